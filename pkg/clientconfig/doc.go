// Package clientconfig parses embedding client configuration values into
// canonical types.ClientDescriptor values.
//
// Four equivalent syntaxes are accepted:
//
//	clientconfig.Parse("c1", "mock:key123")                                  // simple
//	clientconfig.Parse("c1", "ollama::nomic-embed-text")                      // double-colon
//	clientconfig.Parse("c2", []string{"format", "ollama", "model", "llava"})  // structured
//	clientconfig.Parse("c1", `{"provider": "openai", "model": "text-embedding-3-small"}`) // serialized
//
// Providers are not validated here. An unknown provider parses successfully
// and is rejected when a request is made.
package clientconfig
