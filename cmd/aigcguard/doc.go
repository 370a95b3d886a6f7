// Command aigcguard embeds, extracts, and matches digital watermarks in
// images, Y4M video streams, and plain text.
package main
