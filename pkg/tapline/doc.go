// Package tapline provides an embeddable activity-event relay: events are
// batched through a bounded queue and delivered to an AMQP exchange, an
// HTTP endpoint, or both (broker first, HTTP as the retried fallback).
//
// Quick start:
//
//	r, err := tapline.Open(
//	    tapline.WithOutputURL("https://collector.example.com/events"),
//	    tapline.WithAPIKey(os.Getenv("COLLECTOR_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	r.KeyPress("A", "Shift")
//	r.Click(tapline.ButtonLeft, 412.5, 96.25)
//
// Record methods enqueue and return immediately; a background consumer
// flushes batches when they fill or the queue goes idle. Close stops
// intake, drains the queue, flushes the final batch, and releases the
// sinks.
package tapline
