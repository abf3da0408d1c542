// Package all registers every built-in transport with ai.DefaultRegistry.
//
//	import _ "github.com/leofalp/unichat/providers/ai/all"
package all

import (
	_ "github.com/leofalp/unichat/providers/ai/openai"
	_ "github.com/leofalp/unichat/providers/ai/rest"
)
