// Package render formats pipeline reports as terminal text or JSON.
package render
