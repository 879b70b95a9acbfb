// Package filters provides the built-in text and keyboard filters that
// presets refer to by name.
//
// A preset lists filters as name/argument pairs:
//
//	text_filters:
//	  - name: deny_words
//	    args: [password, secret]
//	  - name: trim_space
//	keyboard_filters:
//	  - name: submit_on_tab
//
// Filters of the same kind are chained in order. A text filter chain stops
// at the first rejection; replacements are fed to the next filter. A keyboard
// filter chain stops at the first status other than accepted or replaced.
package filters
