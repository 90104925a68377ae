// Package driver implements the EmberDB client driver: attachments,
// transactions, prepared statements, cursors, streamed blobs and server
// event subscriptions, on top of the engine boundary defined in
// pkg/engine.
//
// # Shape
//
// A Client is the process-wide factory. It opens Attachments; an
// Attachment starts Transactions and prepares Statements; executing a
// statement yields nothing, a single Row, or a ResultSet cursor that is
// fetched in batches until exhausted. Blobs stream large binary content
// without buffering it whole, and EventSubscriptions deliver named
// server-posted event counters independently of any transaction.
//
//	client := driver.NewClient(eng, driver.Config{}, log)
//	att, err := client.Connect(ctx, &driver.ConnectOptions{Database: "/data/crm.edb"})
//	tx, err := att.StartTransaction(ctx, nil)
//	rs, err := att.ExecuteQuery(ctx, tx, "SELECT ID, NAME FROM CUSTOMER")
//	for {
//	    rows, err := rs.Fetch(ctx, nil)
//	    if err != nil || len(rows) == 0 {
//	        break
//	    }
//	    ...
//	}
//	_ = rs.Close(ctx)
//	_ = tx.Commit(ctx)
//	_ = att.Disconnect(ctx)
//
// # Concurrency
//
// All operations may suspend awaiting the engine. Operations sharing one
// Transaction (including fetches on its cursors and blob I/O under it)
// must be awaited serially; the driver fails fast with ErrConcurrentUse
// when this is violated. Distinct transactions of one attachment may
// operate concurrently, and event dispatch is independent of all of them.
//
// # Cleanup
//
// The driver never closes transactions, statements or cursors behind the
// caller's back on error; release them on every exit path. Disposing a
// parent does invalidate its children: disconnecting an attachment (or
// dropping its database) invalidates everything created through it.
package driver
