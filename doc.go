// Package rembed provides named embedding clients for Go.
//
// A client is registered once under a name from a compact configuration
// value and is then used by name to embed text, images, or whole batches.
// Clients talk to OpenAI compatible APIs (OpenAI, Ollama, llamafile, Jina,
// Mixedbread), Gemini, or Anthropic for image descriptions, and a mock
// provider returns deterministic vectors without network access.
//
// # Registering Clients
//
// Every configuration syntax below produces the same kind of descriptor:
//
//	client, err := rembed.New(config.Default(), logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	// provider:credential, the model defaults to the client name
//	client.Register("text-embedding-3-small", "openai:sk-...")
//
//	// provider::model
//	client.Register("local", "ollama::nomic-embed-text")
//
//	// structured form; embedding_model makes it a multimodal client
//	client.Register("vision", map[string]string{
//		"format":          "ollama",
//		"model":           "llava",
//		"embedding_model": "nomic-embed-text",
//	})
//
//	// serialized object
//	client.Register("jina", `{"provider": "jina", "model": "jina-embeddings-v2-base-en"}`)
//
// Text clients and multimodal clients are kept apart: a text operation on a
// multimodal client fails with types.ClientNotRegisteredError and vice versa.
//
// # Embedding
//
// Vectors are returned as little-endian float32 bytes:
//
//	vec, err := client.EmbedText(ctx, "local", "hello world")
//	floats := vec.Floats()
//
// Images are described by the vision model and the description is embedded:
//
//	vec, err := client.EmbedImage(ctx, "vision", pngBytes, "")
//
// # Batches
//
// Batches run with at most max_concurrent_requests requests in flight per
// client (4 by default). Results keep input order and failed items do not
// affect the others:
//
//	res, err := client.EmbedBatch(ctx, "local", []string{"a", "b", "c"})
//	fmt.Println(res.Stats.Successful, res.Stats.Failed, res.Stats.Throughput)
//
// # Configuration
//
// Settings are read with viper from a config file and environment variables,
// see the config package. Setting MOCK_EMBEDDINGS=true routes every client to
// the mock provider.
package rembed
