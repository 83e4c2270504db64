// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")
	data := []byte("hello, world!")

	err := AtomicWriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "updated" {
		t.Errorf("Content not updated: got %q", string(content))
	}
}

func TestAtomicWriteFile_NoTempLeftover(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := AtomicWriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

// =============================================================================
// STRING TRUNCATION TESTS
// =============================================================================

func TestTruncateRunes_ASCII(t *testing.T) {
	testCases := []struct {
		input    string
		maxRunes int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"hello", 5, "hello"},
		{"hi", 5, "hi"},
		{"", 5, ""},
		{"hello world", 0, ""},
		{"hello world", 11, "hello world"},
		{"ab", 3, "ab"},
		{"abcd", 3, "abc"}, // When maxRunes <= 3, no ellipsis is added
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := TruncateRunes(tc.input, tc.maxRunes)
			if result != tc.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q",
					tc.input, tc.maxRunes, result, tc.expected)
			}
		})
	}
}

func TestTruncateRunes_UTF8(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		maxRunes int
	}{
		{"emoji", "hello 👋 world", 7},
		{"chinese", "你好世界", 3},
		{"mixed", "hi 日本", 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := TruncateRunes(tc.input, tc.maxRunes)
			if len([]rune(result)) > tc.maxRunes {
				t.Errorf("TruncateRunes result %q has %d runes, want <= %d",
					result, len([]rune(result)), tc.maxRunes)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		maxWidth int
	}{
		{"ascii short", "hello", 10},
		{"ascii exact", "hello", 5},
		{"ascii truncate", "hello world", 5},
		{"cjk truncate", "日本語テキスト", 7},
		{"empty", "", 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := TruncateWidth(tc.input, tc.maxWidth)
			if got := StringWidth(result); got > tc.maxWidth {
				t.Errorf("TruncateWidth(%q, %d) = %q with width %d",
					tc.input, tc.maxWidth, result, got)
			}
			if StringWidth(tc.input) <= tc.maxWidth && result != tc.input {
				t.Errorf("TruncateWidth(%q, %d) changed a fitting string to %q",
					tc.input, tc.maxWidth, result)
			}
		})
	}
}

func TestPadWidth(t *testing.T) {
	if got := PadWidth("ab", 5); got != "ab   " {
		t.Errorf("PadWidth = %q", got)
	}
	if got := StringWidth(PadWidth("日本語テキスト", 5)); got != 5 {
		t.Errorf("PadWidth over-wide input has width %d", got)
	}
}

func TestSafeSubstring(t *testing.T) {
	testCases := []struct {
		input    string
		start    int
		end      int
		expected string
	}{
		{"hello world", 0, 5, "hello"},
		{"hello world", 6, 11, "world"},
		{"hello", 0, 10, "hello"},
		{"hello", 10, 15, ""},
		{"hello", -1, 3, "hel"},
		{"hello", 3, 2, ""},
		{"你好世界", 0, 2, "你好"},
		{"你好世界", 1, 3, "好世"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := SafeSubstring(tc.input, tc.start, tc.end)
			if result != tc.expected {
				t.Errorf("SafeSubstring(%q, %d, %d) = %q, want %q",
					tc.input, tc.start, tc.end, result, tc.expected)
			}
		})
	}
}

func TestStringWidth(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{"hello", 5},
		{"", 0},
		{"日本語", 6},      // 3 CJK chars = 6 width
		{"こんにちは", 10},   // 5 hiragana = 10 width
		{"hello世界", 9}, // 5 ASCII + 2 CJK = 9
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := StringWidth(tc.input)
			if result != tc.expected {
				t.Errorf("StringWidth(%q) = %d, want %d", tc.input, result, tc.expected)
			}
		})
	}
}

func TestRuneWidth(t *testing.T) {
	testCases := []struct {
		r        rune
		expected int
	}{
		{'a', 1},
		{' ', 1},
		{'日', 2},
		{'あ', 2},
		{'한', 2},
		{'！', 2}, // Fullwidth exclamation
	}

	for _, tc := range testCases {
		t.Run(string(tc.r), func(t *testing.T) {
			result := RuneWidth(tc.r)
			if result != tc.expected {
				t.Errorf("RuneWidth(%q) = %d, want %d", tc.r, result, tc.expected)
			}
		})
	}
}

// =============================================================================
// WRAP TESTS
// =============================================================================

func TestWrapWidth(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		expected []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"simple wrap", "one two three four", 9, []string{"one two", "three", "four"}},
		{"exact boundary", "ab cd", 5, []string{"ab cd"}},
		{"long word split", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"long word after text", "hi abcdefgh", 4, []string{"hi", "abcd", "efgh"}},
		{"empty", "", 10, []string{""}},
		{"zero width passthrough", "hello", 0, []string{"hello"}},
		{"cjk split", "日本語のテスト", 6, []string{"日本語", "のテス", "ト"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := WrapWidth(tc.input, tc.width)
			if len(result) != len(tc.expected) {
				t.Fatalf("WrapWidth(%q, %d) = %q, want %q", tc.input, tc.width, result, tc.expected)
			}
			for i := range result {
				if result[i] != tc.expected[i] {
					t.Errorf("WrapWidth(%q, %d)[%d] = %q, want %q", tc.input, tc.width, i, result[i], tc.expected[i])
				}
			}
		})
	}
}

func TestWrapWidthNeverExceeds(t *testing.T) {
	inputs := []string{
		"the quick brown fox jumps over the lazy dog",
		"supercalifragilisticexpialidocious",
		"混ぜた text with 日本語 and ascii words",
	}

	for _, input := range inputs {
		for _, width := range []int{4, 8, 16, 40} {
			for _, line := range WrapWidth(input, width) {
				if StringWidth(line) > width {
					t.Errorf("WrapWidth(%q, %d) produced overwide line %q (width %d)",
						input, width, line, StringWidth(line))
				}
			}
		}
	}
}

func TestHardWrapWidth(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		expected []string
	}{
		{"fits", "short", 10, []string{"short"}},
		{"exact", "abcd", 4, []string{"abcd"}},
		{"split mid word", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"cjk not split", "ab日cd", 3, []string{"ab", "日c", "d"}},
		{"zero width passthrough", "abc", 0, []string{"abc"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := HardWrapWidth(tc.input, tc.width)
			if len(result) != len(tc.expected) {
				t.Fatalf("HardWrapWidth(%q, %d) = %q, want %q", tc.input, tc.width, result, tc.expected)
			}
			for i := range result {
				if result[i] != tc.expected[i] {
					t.Errorf("HardWrapWidth(%q, %d)[%d] = %q, want %q", tc.input, tc.width, i, result[i], tc.expected[i])
				}
			}
		})
	}
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatCount(t *testing.T) {
	testCases := []struct {
		n        int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatCount(tc.n); got != tc.expected {
				t.Errorf("FormatCount(%d) = %q, want %q", tc.n, got, tc.expected)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	testCases := []struct {
		p        float64
		expected string
	}{
		{0, "0%"},
		{49.4, "49%"},
		{49.5, "50%"},
		{100, "100%"},
		{240, "100%"},
		{-3, "0%"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatPercent(tc.p); got != tc.expected {
				t.Errorf("FormatPercent(%v) = %q, want %q", tc.p, got, tc.expected)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	testCases := []struct {
		n        int64
		expected string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatBytes(tc.n); got != tc.expected {
				t.Errorf("FormatBytes(%d) = %q, want %q", tc.n, got, tc.expected)
			}
		})
	}
}
