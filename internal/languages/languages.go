package languages

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one entry of the picker catalogue.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

const (
	DefaultSource = "English"
	DefaultTarget = "Chinese"
)

var catalogue = []language.Tag{
	language.English,
	language.Chinese,
	language.Japanese,
	language.German,
	language.French,
	language.Spanish,
	language.Korean,
	language.Russian,
	language.Italian,
	language.Portuguese,
}

var (
	byName = make(map[string]Language, len(catalogue))
	byCode = make(map[string]Language, len(catalogue))
	list   = make([]Language, 0, len(catalogue))
)

func init() {
	names := display.English.Languages()
	for _, tag := range catalogue {
		l := Language{
			Code:       tag.String(),
			Name:       names.Name(tag),
			NativeName: display.Self.Name(tag),
		}
		byName[strings.ToLower(l.Name)] = l
		byCode[l.Code] = l
		list = append(list, l)
	}
}

// List returns the supported languages in picker order.
func List() []Language {
	out := make([]Language, len(list))
	copy(out, list)
	return out
}

// Supported reports whether the base language of s is in the catalogue.
func Supported(s string) bool {
	if _, ok := byName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return true
	}
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	_, ok := byCode[base.String()]
	return ok
}

// Resolve returns the English name for s. s may be a catalogue name in any
// case ("chinese"), or a BCP-47 tag. A tag collapses to its catalogue name
// only when it adds no script or region beyond the language default, so
// "zh-Hans" is "Chinese" while "zh-Hant" and "pt-BR" keep their variant
// names. Anything unparseable is returned trimmed and unchanged.
func Resolve(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if l, ok := byName[strings.ToLower(s)]; ok {
		return l.Name
	}
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	base, _ := tag.Base()
	if l, ok := byCode[base.String()]; ok && !hasVariant(tag, base) {
		return l.Name
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name + " (" + tag.String() + ")"
	}
	return s
}

// hasVariant reports whether tag names a script other than the default for
// base, or any region.
func hasVariant(tag language.Tag, base language.Base) bool {
	if _, conf := tag.Region(); conf == language.Exact {
		return true
	}
	script, conf := tag.Script()
	if conf != language.Exact {
		return false
	}
	def, _ := language.Make(base.String()).Script()
	return script != def
}
