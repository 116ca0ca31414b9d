// Package askdex provides an embedded Go client for the askdex catalog
// question-answering engine, backed by Redis with search modules.
//
// The client wires the full retrieval stack in-process: capability-learning
// vector search, four retrieval strategies with automatic routing, and
// cross-modal image scoring. Embedding and generation providers are
// supplied by the caller.
//
//	client, _ := askdex.New(ctx,
//	    askdex.WithRedis("localhost:6379", ""),
//	    askdex.WithTextEmbedder(textEmb),
//	    askdex.WithImageEmbedder(imageEmb),
//	    askdex.WithGenerator(gen),
//	)
//	defer client.Close()
//
//	res, _ := client.Ask(ctx, "which impact wrench handles M12 bolts?", "")
//	fmt.Println(res.Answer)
package askdex
