// Package render turns reports, repository listings, registry details, and
// scan summaries into terminal text or JSON documents. One renderer instance
// satisfies the renderer interfaces each command package declares.
package render
