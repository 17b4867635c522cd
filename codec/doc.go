// Package codec ties the registry, the descriptor caches, the container
// encoder and the text form together:
//
//	c := codec.New(registry.NewBuiltin())
//	ct, _ := c.In("(int4,42)")   // 0c000000 17000000 2a000000
//	s, _ := c.Out(ct)            // "(int4,42)"
package codec
