package ai

import (
	"fmt"
	"strings"
)

// Prompt is a system message plus the user turn sent to a provider.
type Prompt struct {
	System string
	User   string
}

// Default free-form completion, used when the caller supplies nothing.
const (
	DefaultCompletionPrompt = "Tell me a story."
	DefaultCompletionSystem = "You are a helpful assistant."
)

// InitialTranslationPrompt asks for a bare first-pass translation.
func InitialTranslationPrompt(source, target, text string) Prompt {
	return Prompt{
		System: fmt.Sprintf("You are an expert linguist, specializing in translation from %s to %s.", source, target),
		User: fmt.Sprintf(`This is an %[1]s to %[2]s translation, please provide the %[2]s translation for this text.
Do not provide any explanations or text apart from the translation.
%[1]s: %[3]s

%[2]s:`, source, target, text),
	}
}

// ReflectionPrompt asks for a list of concrete suggestions on the initial
// translation. A non-empty country pins the colloquial register.
func ReflectionPrompt(source, target, text, initial, country string) Prompt {
	countryLine := ""
	if strings.TrimSpace(country) != "" {
		countryLine = fmt.Sprintf("\nThe final style and tone of the translation should match the style of %s colloquially spoken in %s.\n", target, strings.TrimSpace(country))
	}

	return Prompt{
		System: fmt.Sprintf(`You are an expert linguist specializing in translation from %s to %s.
You will be provided with a source text and its translation and your goal is to improve the translation.`, source, target),
		User: fmt.Sprintf(`Your task is to carefully read a source text and a translation from %[1]s to %[2]s, and then give constructive criticism and helpful suggestions to improve the translation.
%[5]s
The source text and initial translation, delimited by XML tags <SOURCE_TEXT></SOURCE_TEXT> and <TRANSLATION></TRANSLATION>, are as follows:

<SOURCE_TEXT>
%[3]s
</SOURCE_TEXT>

<TRANSLATION>
%[4]s
</TRANSLATION>

When writing suggestions, pay attention to whether there are ways to improve the translation's
(i) accuracy (by correcting errors of addition, mistranslation, omission, or untranslated text),
(ii) fluency (by applying %[2]s grammar, spelling and punctuation rules, and ensuring there are no unnecessary repetitions),
(iii) style (by ensuring the translations reflect the style of the source text and takes into account any cultural context),
(iv) terminology (by ensuring terminology use is consistent and reflects the source text domain; and by only ensuring you use equivalent idioms %[2]s).

Write a list of specific, helpful and constructive suggestions for improving the translation.
Each suggestion should address one specific part of the translation.
Output only the suggestions and nothing else.`, source, target, text, initial, countryLine),
	}
}

// ImprovementPrompt asks for the edited translation given the suggestions.
func ImprovementPrompt(source, target, text, initial, reflection string) Prompt {
	return Prompt{
		System: fmt.Sprintf("You are an expert linguist, specializing in translation editing from %s to %s.", source, target),
		User: fmt.Sprintf(`Your task is to carefully read, then edit, a translation from %[1]s to %[2]s, taking into account a list of expert suggestions and constructive criticisms.

The source text, the initial translation, and the expert linguist suggestions are delimited by XML tags <SOURCE_TEXT></SOURCE_TEXT>, <TRANSLATION></TRANSLATION> and <EXPERT_SUGGESTIONS></EXPERT_SUGGESTIONS> as follows:

<SOURCE_TEXT>
%[3]s
</SOURCE_TEXT>

<TRANSLATION>
%[4]s
</TRANSLATION>

<EXPERT_SUGGESTIONS>
%[5]s
</EXPERT_SUGGESTIONS>

Please take into account the expert suggestions when editing the translation. Edit the translation by ensuring:

(i) accuracy (by correcting errors of addition, mistranslation, omission, or untranslated text),
(ii) fluency (by applying %[2]s grammar, spelling and punctuation rules and ensuring there are no unnecessary repetitions),
(iii) style (by ensuring the translations reflect the style of the source text),
(iv) terminology (inappropriate for context, inconsistent use), or
(v) other errors.

Output only the new translation and nothing else.`, source, target, text, initial, reflection),
	}
}
