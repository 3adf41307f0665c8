/*
Package lexer turns deck text into a stream of typed tokens.

Deck input is line oriented. A line whose first two non-blank characters are
"--" is a comment, and "--" outside quotes truncates the rest of any line.
Tokens are numbers, bare words, quoted strings (single or double quotes,
verbatim), multiplier tokens of the form `N*value` or `N*`, and the record
terminator "/". Multipliers are not expanded here: the item type that decides
how the repeated value is read is only known to the record parser.

The lexer keeps a single forward cursor. Peek buffers one token, and
SkipToEndOfLine drops whatever remains on the line of the last consumed token.
*/
package lexer
