package model

import "time"

// Translation is one completed three-stage run, cached by CacheKey.
type Translation struct {
	ID                  int64
	CacheKey            string
	Provider            string
	Model               string
	SourceLang          string
	TargetLang          string
	Country             string
	SourceText          string
	InitialTranslation  string
	Reflection          string
	ImprovedTranslation string
	DurationMs          int64
	CreatedAt           time.Time
}
