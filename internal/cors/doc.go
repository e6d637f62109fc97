// Package cors sets the fixed set of cross-origin headers carried by every
// proxied response and answers browser preflight requests locally.
package cors
