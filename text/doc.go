// Package text renders and parses the "(type-name,value)" text form.
//
// Values that are empty or contain a double quote, backslash, parenthesis,
// comma or whitespace are wrapped in double quotes with embedded quotes and
// backslashes doubled:
//
//	""      -> (text,"")
//	a,b     -> (text,"a,b")
//	a"b     -> (text,"a""b")
//	plain   -> (text,plain)
//
// A null value has no value text at all: (int4,).
package text
