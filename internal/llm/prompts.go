package llm

import (
	"fmt"
	"strings"
	"unicode"
)

const generalSystemPrompt = `You are an expert transcription editor. Enhance transcriptions by:

1. Fix grammar, punctuation, capitalization
2. Add paragraph breaks for readability
3. Remove fillers (um, uh, like, you know)

Rules:
- Preserve original meaning completely
- Do NOT add new information
- Keep technical terms, names unchanged
- Maintain original tone and style

Return ONLY the enhanced text, no explanation.`

const tashkeelSystemPrompt = `You are an expert Arabic transcription editor and linguist specializing in Arabic diacritization (التشكيل/Tashkeel).

Enhance the Arabic transcription with two objectives.

1. Text enhancement
- Fix grammar and punctuation
- Add paragraph breaks for readability
- Remove fillers (يعني، آه، إيه، هم)
- Correct obvious transcription errors

2. Complete diacritization
Add accurate diacritics to every Arabic word: fatha, kasra, damma, sukun, shadda and the three tanwin forms.
- Choose diacritics from the meaning in context (عَلِمَ, عِلْم, عَلَّمَ)
- Apply correct case endings (إعراب) for the grammatical position
- Match verb forms to tense (الماضي، المضارع، الأمر)
- Apply shaddah after the definite article for sun letters (الشَّمْس)
- Follow standard patterns (أوزان) for verbs and participles
- Use traditional scholarly diacritization for religious or Quranic text
- In mixed Arabic and English text, diacritize only the Arabic

Rules:
- Preserve original meaning completely
- Do NOT add new information or change content
- Every Arabic word MUST carry complete diacritics
- Maintain the speaker's tone and style

Return ONLY the enhanced and fully diacritized text, no explanation.`

const generalUserTemplate = `Transcription:
%s

Enhance this text following the rules above. Output only the enhanced transcription.`

const tashkeelUserTemplate = `النص المُفرَّغ (Transcription):
%s

قم بتحسين هذا النص وإضافة التشكيل الكامل (الحركات) لجميع الكلمات العربية.
Enhance this Arabic text and add complete Tashkeel (diacritics) to all Arabic words.

أخرج النص المُحسَّن والمُشكَّل فقط، بدون أي شرح.
Output only the enhanced and diacritized text, no explanation.`

var arabicLanguageCodes = map[string]bool{
	"ar":     true,
	"ara":    true,
	"arabic": true,
	"ar-sa":  true,
	"ar-eg":  true,
	"ar-ma":  true,
	"ar-ae":  true,
}

// arabicRatioThreshold is the share of non-space runes that must be Arabic
const arabicRatioThreshold = 0.2

// IsArabic reports whether language names Arabic or more than a fifth of the
// non-space characters of text are Arabic script
func IsArabic(language, text string) bool {
	if arabicLanguageCodes[strings.ToLower(strings.TrimSpace(language))] {
		return true
	}

	var arabic, nonSpace int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		nonSpace++
		if isArabicRune(r) {
			arabic++
		}
	}
	if nonSpace == 0 {
		return false
	}
	return float64(arabic)/float64(nonSpace) > arabicRatioThreshold
}

func isArabicRune(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF:
	case r >= 0x0750 && r <= 0x077F:
	case r >= 0xFB50 && r <= 0xFDFF:
	case r >= 0xFE70 && r <= 0xFEFF:
	default:
		return false
	}
	return true
}

// Prompts returns the system and user prompts for req. The Tashkeel prompts
// apply only when requested and the text is Arabic.
func Prompts(req Request) (system, user string) {
	if req.EnableTashkeel && IsArabic(req.Language, req.Text) {
		return tashkeelSystemPrompt, fmt.Sprintf(tashkeelUserTemplate, req.Text)
	}
	return generalSystemPrompt, fmt.Sprintf(generalUserTemplate, req.Text)
}
