package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kjstillabower/travel-discovery-service/internal/provider"
)

type translationItem struct {
	TranslationText *string `json:"translation_text"`
	GeneratedText   *string `json:"generated_text"`
}

func (it translationItem) text() string {
	if it.TranslationText != nil {
		return *it.TranslationText
	}
	if it.GeneratedText != nil {
		return *it.GeneratedText
	}
	return ""
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

// Normalize extracts the translated string from any of the response shapes the
// inference backend produces: a list of objects, a single object, or a bare JSON
// string. An error body, an unknown shape or blank text fails with
// provider.ErrTranslationFailed.
func Normalize(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: %w: empty body", provider.ErrTranslationFailed, provider.ErrEmptyResult)
	}

	var text string
	switch raw[0] {
	case '[':
		var items []translationItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", malformed(err)
		}
		if len(items) == 0 {
			return "", fmt.Errorf("%w: %w: empty list", provider.ErrTranslationFailed, provider.ErrEmptyResult)
		}
		text = items[0].text()
	case '{':
		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err == nil && len(eb.Error) > 0 && string(eb.Error) != "null" {
			return "", fmt.Errorf("%w: backend error: %s", provider.ErrTranslationFailed, eb.Error)
		}
		var item translationItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", malformed(err)
		}
		text = item.text()
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", malformed(err)
		}
	default:
		return "", malformed(fmt.Errorf("unexpected body %.40q", raw))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %w: no translated text", provider.ErrTranslationFailed, provider.ErrEmptyResult)
	}
	return text, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w: %v", provider.ErrTranslationFailed, provider.ErrMalformedResponse, err)
}
