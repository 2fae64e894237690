// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT_English(t *testing.T) {
	p := New("en")
	assert.Equal(t, "Error: Failed to get response", p.T(KeyRetrievalError))
	assert.Equal(t, "Current mode: hybrid. Type / for options...", p.T(KeyPlaceholder, "hybrid"))
}

func TestT_Translated(t *testing.T) {
	assert.Equal(t, "错误：获取响应失败", New("zh").T(KeyRetrievalError))
	assert.Equal(t, "Mode invité", New("fr").T(KeyGuestMode))
}

func TestT_FallsBackToEnglish(t *testing.T) {
	// Arabic has no busy string.
	assert.Equal(t, "Still answering the previous question", New("ar").T(KeyBusy))
}

func TestNew_Matching(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"zh-CN", "zh"},
		{"fr-CA", "fr"},
		{"de", "en"},
		{"garbage!!", "en"},
		{"", "en"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, New(tc.input).Language().String())
		})
	}
}

func TestRTL(t *testing.T) {
	assert.True(t, New("ar").RTL())
	assert.False(t, New("en").RTL())
}
