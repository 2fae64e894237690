// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package i18n holds the translated user-facing strings.
//
// Strings are addressed by stable keys and looked up through an
// x/text message catalog; a key missing in a language falls back to English.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	KeyRetrievalError   = "retrievePanel.retrieval.error"
	KeyPlaceholder      = "retrievePanel.retrieval.placeholder"
	KeyInvalidMode      = "retrievePanel.retrieval.invalidMode"
	KeyBusy             = "retrievePanel.retrieval.busy"
	KeyClear            = "retrievePanel.retrieval.clear"
	KeyCleared          = "retrievePanel.retrieval.cleared"
	KeyStartPrompt      = "retrievePanel.retrieval.startPrompt"
	KeySuggestions      = "retrievePanel.retrieval.suggestions"
	KeyCopied           = "retrievePanel.chatMessage.copied"
	KeyGuestMode        = "login.guestMode"
	KeyConnected        = "graphPanel.statusIndicator.connected"
	KeyDisconnected     = "graphPanel.statusIndicator.disconnected"
	KeyModeChanged      = "retrievePanel.querySettings.modeChanged"
	KeyModePickerTitle  = "retrievePanel.querySettings.queryModeTitle"
	KeyThinking         = "retrievePanel.retrieval.thinking"
	KeyClearedElsewhere = "retrievePanel.retrieval.clearedElsewhere"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		KeyRetrievalError:   "Error: Failed to get response",
		KeyPlaceholder:      "Current mode: %s. Type / for options...",
		KeyInvalidMode:      "Unknown query mode %q",
		KeyBusy:             "Still answering the previous question",
		KeyClear:            "Clear",
		KeyCleared:          "Conversation cleared",
		KeyStartPrompt:      "Start a retrieval by typing your query below",
		KeySuggestions:      "Try asking",
		KeyCopied:           "Copied to clipboard",
		KeyGuestMode:        "Guest Mode",
		KeyConnected:        "Connected",
		KeyDisconnected:     "Disconnected",
		KeyModeChanged:      "Query mode set to %s",
		KeyModePickerTitle:  "Query Mode",
		KeyThinking:         "Thinking...",
		KeyClearedElsewhere: "Conversation was cleared in another window; the last answer was dropped",
	},
	language.Chinese: {
		KeyRetrievalError:   "错误：获取响应失败",
		KeyPlaceholder:      "当前模式：%s。输入 / 查看选项...",
		KeyInvalidMode:      "未知的查询模式 %q",
		KeyBusy:             "仍在回答上一个问题",
		KeyClear:            "清空",
		KeyCleared:          "对话已清空",
		KeyStartPrompt:      "在下方输入查询开始检索",
		KeySuggestions:      "试着问",
		KeyCopied:           "已复制到剪贴板",
		KeyGuestMode:        "访客模式",
		KeyConnected:        "已连接",
		KeyDisconnected:     "已断开",
		KeyModeChanged:      "查询模式已设为 %s",
		KeyModePickerTitle:  "查询模式",
		KeyThinking:         "思考中...",
		KeyClearedElsewhere: "对话已在另一个窗口中清空，最后的回答已丢弃",
	},
	language.French: {
		KeyRetrievalError:  "Erreur : Échec de l'obtention de la réponse",
		KeyPlaceholder:     "Mode actuel : %s. Tapez / pour les options...",
		KeyInvalidMode:     "Mode de requête inconnu %q",
		KeyClear:           "Effacer",
		KeyCleared:         "Conversation effacée",
		KeyStartPrompt:     "Commencez une recherche en saisissant votre requête ci-dessous",
		KeyGuestMode:       "Mode invité",
		KeyConnected:       "Connecté",
		KeyDisconnected:    "Déconnecté",
		KeyModePickerTitle: "Mode de requête",
	},
	language.Arabic: {
		KeyRetrievalError: "خطأ: فشل في الحصول على الرد",
		KeyClear:          "مسح",
		KeyGuestMode:      "وضع الضيف",
		KeyConnected:      "متصل",
		KeyDisconnected:   "غير متصل",
	},
}

var (
	supported = []language.Tag{language.English, language.Chinese, language.French, language.Arabic}
	matcher   = language.NewMatcher(supported)
	cat       = buildCatalog()
)

// buildCatalog registers every key for every language. The catalog does not
// fall back across languages on its own, so gaps are filled from English.
func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	english := translations[language.English]
	for _, tag := range supported {
		entries := translations[tag]
		for key, text := range english {
			if translated, ok := entries[key]; ok {
				text = translated
			}
			_ = b.SetString(tag, key, text)
		}
	}
	return b
}

// Printer formats localized strings for one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a printer for lang (e.g. "en", "zh-CN", "fr"). Unsupported
// languages resolve to the closest supported one, ultimately English.
func New(lang string) *Printer {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		matched, _, _ := matcher.Match(parsed)
		base, _ := matched.Base()
		tag = language.Make(base.String())
	}
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// T returns the translation of key formatted with args.
func (p *Printer) T(key string, args ...interface{}) string {
	return p.p.Sprintf(key, args...)
}

// Language returns the resolved language tag.
func (p *Printer) Language() language.Tag {
	return p.tag
}

// RTL reports whether the language is written right to left.
func (p *Printer) RTL() bool {
	base, _ := p.tag.Base()
	return base.String() == "ar"
}
