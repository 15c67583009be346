// Package placeholder expands the <name> tokens of a prompt template. It
// uses valyala/fasttemplate with "<" and ">" delimiters; only identifiers
// made of letters, digits and underscores count as tokens, everything else
// between the brackets is copied through untouched.
//
// The supported names are company, ceo, competitor and individual. The
// Engine validates a template before substituting anything, and every
// occurrence of <competitor> or <individual> draws a fresh value from its
// pool through a Picker.
package placeholder
