package web

import _ "embed"

// apiDoc is the markdown reference served at /docs.
//
//go:embed docs/api.md
var apiDoc string
