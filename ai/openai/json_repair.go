// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import "strings"

// repairJSON attempts to fix common JSON formatting issues from LLM responses.
// It restores missing opening quotes before keys (`{reasoning": "..."}`) and
// drops trailing commas before a closing brace or bracket. Text inside string
// literals is never modified.
func repairJSON(s string) string {
	src := []rune(s)

	var out strings.Builder
	out.Grow(len(s) + 8)

	inString := false
	escaped := false
	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inString {
			out.WriteRune(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out.WriteRune(ch)
		case ',':
			// Drop the comma if only whitespace separates it from a closer
			j := skipSpace(src, i+1)
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				continue
			}
			out.WriteRune(ch)
			i = writeKey(&out, src, i)
		case '{':
			out.WriteRune(ch)
			i = writeKey(&out, src, i)
		default:
			out.WriteRune(ch)
		}
	}

	return out.String()
}

// writeKey copies the whitespace after src[at] and, when it is followed by a
// bare word that ends in `":`, writes the word with its missing opening quote.
// It returns the index of the last rune consumed.
func writeKey(out *strings.Builder, src []rune, at int) int {
	i := at + 1
	for i < len(src) && isSpace(src[i]) {
		out.WriteRune(src[i])
		i++
	}

	if i >= len(src) || !isLetter(src[i]) {
		return i - 1
	}

	end := i
	for end < len(src) && (isLetter(src[end]) || src[end] == '_') {
		end++
	}
	if end+1 < len(src) && src[end] == '"' && src[end+1] == ':' {
		out.WriteRune('"')
		out.WriteString(string(src[i:end]))
		// The closing quote at src[end] starts a "string" in the caller's
		// view, so emit it here and skip it.
		out.WriteRune('"')
		return end
	}

	return i - 1
}

func skipSpace(src []rune, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
