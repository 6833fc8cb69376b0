/*
Package templating renders static HTML documents by literal token substitution.

A template is a plain file containing placeholder tokens such as {{ROWS}}. It
is read from disk on every call, so edits show up without a restart, and each
token is replaced verbatim by the value paired with it. Tokens are never
interpreted as patterns, replacement text is never re-scanned, and tokens with
no replacement are left in the output as they are.
*/
package templating
