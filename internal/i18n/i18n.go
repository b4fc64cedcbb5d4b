package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Language represents a supported language
type Language string

const (
	// Japanese language
	LanguageJapanese Language = "ja"
	// English language
	LanguageEnglish Language = "en"
)

// Translator manages translations for the application
type Translator struct {
	currentLanguage Language
	translations    map[Language]map[string]string
	mu              sync.RWMutex
}

// NewTranslator creates a new translator with default language
func NewTranslator(language Language) *Translator {
	return &Translator{
		currentLanguage: language,
		translations:    make(map[Language]map[string]string),
	}
}

// LoadTranslations loads translations from JSON data
func (t *Translator) LoadTranslations(language Language, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to unmarshal translations: %w", err)
	}

	t.translations[language] = translations
	return nil
}

// LoadTranslationsFromFile loads translations from a JSON file
func (t *Translator) LoadTranslationsFromFile(language Language, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read translation file: %w", err)
	}

	return t.LoadTranslations(language, data)
}

// SetLanguage sets the current language
func (t *Translator) SetLanguage(language Language) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentLanguage = language
}

// GetLanguage returns the current language
func (t *Translator) GetLanguage() Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentLanguage
}

// Translate translates a key in the current language
func (t *Translator) Translate(key string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[t.currentLanguage]; ok {
		if text, ok := translations[key]; ok {
			return text
		}
	}

	// Fallback to English if translation not found
	if t.currentLanguage != LanguageEnglish {
		if translations, ok := t.translations[LanguageEnglish]; ok {
			if text, ok := translations[key]; ok {
				return text
			}
		}
	}

	// Return key itself if no translation found
	return key
}

// TranslateWithFormat translates a key and formats with parameters
func (t *Translator) TranslateWithFormat(key string, params map[string]string) string {
	text := t.Translate(key)

	// Simple string replacement for parameters
	for param, value := range params {
		placeholder := fmt.Sprintf("{%s}", param)
		text = strings.ReplaceAll(text, placeholder, value)
	}

	return text
}

// GetAllTranslations returns all translations for the current language
func (t *Translator) GetAllTranslations() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[t.currentLanguage]; ok {
		// Return a copy to prevent external modifications
		result := make(map[string]string)
		for k, v := range translations {
			result[k] = v
		}
		return result
	}

	return make(map[string]string)
}

// HasTranslation checks if a translation key exists
func (t *Translator) HasTranslation(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[t.currentLanguage]; ok {
		_, ok := translations[key]
		return ok
	}

	return false
}

// ValidateLanguage validates that a language is supported
func ValidateLanguage(language string) bool {
	return language == string(LanguageJapanese) || language == string(LanguageEnglish)
}

// DetectSystemLanguage picks the UI language from the POSIX locale variables
func DetectSystemLanguage() Language {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" {
			if strings.HasPrefix(strings.ToLower(v), "ja") {
				return LanguageJapanese
			}
			return LanguageEnglish
		}
	}
	return LanguageEnglish
}

// GetSupportedLanguages returns a list of supported languages
func GetSupportedLanguages() []Language {
	return []Language{LanguageJapanese, LanguageEnglish}
}

// NewDefaultTranslator creates a translator loaded with the built-in catalogues
func NewDefaultTranslator(language Language) *Translator {
	t := NewTranslator(language)
	t.translations[LanguageEnglish] = DefaultEnglishTranslations()
	t.translations[LanguageJapanese] = DefaultJapaneseTranslations()
	return t
}

// GlobalTranslator backs T and TF. It is set once during startup.
var GlobalTranslator *Translator

// T translates using the global translator
func T(key string) string {
	if GlobalTranslator == nil {
		return key
	}
	return GlobalTranslator.Translate(key)
}

// TF translates with formatting using the global translator
func TF(key string, params map[string]string) string {
	if GlobalTranslator == nil {
		return key
	}
	return GlobalTranslator.TranslateWithFormat(key, params)
}

// DefaultEnglishTranslations returns default English translations
func DefaultEnglishTranslations() map[string]string {
	return map[string]string{
		// Menu items
		"menu.record":        "Record Voice Note",
		"menu.stop":          "Stop",
		"menu.cancel":        "Cancel Recording",
		"menu.play":          "Play",
		"menu.pause":         "Pause",
		"menu.send":          "Send Voice Note",
		"menu.discard":       "Discard",
		"menu.open_outbox":   "Open Outbox",
		"menu.open_settings": "Open Settings...",
		"menu.mic_settings":  "Microphone Privacy Settings...",
		"menu.quit":          "Quit",

		// Composer
		"composer.placeholder":  "Type a message",
		"composer.send":         "Send",
		"composer.record":       "Hold to record",
		"composer.sent_text":    "Message sent",
		"composer.sent_audio":   "Voice note sent ({seconds}s)",
		"composer.discarded":    "Voice note discarded",
		"composer.attachments":  "{count} attachment(s)",
		"composer.help_text":    "enter: send / record  ctrl+v: paste  ctrl+t: attach  ctrl+c: quit",
		"composer.help_record":  "enter: stop  esc: cancel",
		"composer.help_preview": "space: play/pause  enter: send  d: discard",

		// Permissions
		"permission.microphone": "Microphone",
		"permission.granted":    "✓ Granted",
		"permission.denied":     "✗ Denied",
		"permission.request":    "Open Settings",

		// Errors
		"error.mic_permission_denied": "Microphone access denied. Allow it in System Settings to record voice notes.",
		"error.hardware_unavailable":  "The microphone or speaker is unavailable. Try again.",
		"error.playback_failed":       "This voice note can't be played and was discarded.",

		// Notifications
		"notification.recording_started": "Recording started",
		"notification.max_duration":      "Recording reached {seconds}s and was stopped",
		"notification.voice_note_sent":   "Voice note sent",
		"notification.location_copied":   "Voice note location copied",

		// Status
		"status.text_entry": "Ready",
		"status.recording":  "Recording {elapsed}",
		"status.preview":    "Voice note {seconds}s",
		"status.playing":    "Playing",
		"status.paused":     "Paused",
	}
}

// DefaultJapaneseTranslations returns default Japanese translations
func DefaultJapaneseTranslations() map[string]string {
	return map[string]string{
		// Menu items
		"menu.record":        "ボイスメモを録音",
		"menu.stop":          "停止",
		"menu.cancel":        "録音をキャンセル",
		"menu.play":          "再生",
		"menu.pause":         "一時停止",
		"menu.send":          "ボイスメモを送信",
		"menu.discard":       "破棄",
		"menu.open_outbox":   "送信済みフォルダを開く",
		"menu.open_settings": "設定を開く...",
		"menu.mic_settings":  "マイクのプライバシー設定...",
		"menu.quit":          "終了",

		// Composer
		"composer.placeholder":  "メッセージを入力",
		"composer.send":         "送信",
		"composer.record":       "長押しで録音",
		"composer.sent_text":    "メッセージを送信しました",
		"composer.sent_audio":   "ボイスメモを送信しました（{seconds}秒）",
		"composer.discarded":    "ボイスメモを破棄しました",
		"composer.attachments":  "添付 {count} 件",
		"composer.help_text":    "enter: 送信 / 録音  ctrl+v: 貼り付け  ctrl+t: 添付  ctrl+c: 終了",
		"composer.help_record":  "enter: 停止  esc: キャンセル",
		"composer.help_preview": "space: 再生/一時停止  enter: 送信  d: 破棄",

		// Permissions
		"permission.microphone": "マイク",
		"permission.granted":    "✓ 許可済み",
		"permission.denied":     "✗ 拒否",
		"permission.request":    "設定を開く",

		// Errors
		"error.mic_permission_denied": "マイクへのアクセスが拒否されました。システム設定で許可してください。",
		"error.hardware_unavailable":  "マイクまたはスピーカーが使用できません。もう一度お試しください。",
		"error.playback_failed":       "このボイスメモは再生できないため破棄しました。",

		// Notifications
		"notification.recording_started": "録音が開始されました",
		"notification.max_duration":      "録音が{seconds}秒に達したため、自動停止しました。",
		"notification.voice_note_sent":   "ボイスメモを送信しました",
		"notification.location_copied":   "ボイスメモの場所をコピーしました",

		// Status
		"status.text_entry": "待機中",
		"status.recording":  "録音中 {elapsed}",
		"status.preview":    "ボイスメモ {seconds}秒",
		"status.playing":    "再生中",
		"status.paused":     "一時停止中",
	}
}
