// Package dispatch embeds batches of texts or images for a registered client.
//
// A batch runs on a sliding-window worker pool sized by the client's
// max_concurrent_requests. Results keep input order, and one failed item
// never cancels its siblings: every item gets a result slot with either an
// embedding or its own error. Only an unknown client or an empty batch fails
// the batch as a whole.
//
// Example:
//
//	d := dispatch.New(inv, dispatch.Options{})
//	res, err := d.EmbedBatch(ctx, "c1", []string{"a", "b", "c"})
//	if err != nil {
//	    return err
//	}
//	for _, r := range res.Results {
//	    if !r.OK() {
//	        log.Printf("item %d: %v", r.Index, r.Err)
//	    }
//	}
package dispatch
