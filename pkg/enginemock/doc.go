// Package enginemock provides an in-memory engine.Engine for tests and
// local development of code built on the EmberDB driver.
//
// Statement behavior is scripted: each SQL text a test intends to prepare is
// registered up front with a Script describing its metadata, its result rows
// or its failure mode. Everything around the scripted statements is real:
// connection and transaction handle lifecycles (including retaining commit
// and rollback), cursor batching with mid-batch failure injection, segmented
// blob storage with partial reads, and event registrations with cumulative
// counters and one-generation delivery.
//
// Example:
//
//	eng := enginemock.New()
//	eng.Script("SELECT NAME FROM CITY", enginemock.Script{
//	    Columns: []engine.Column{{Label: "NAME", Kind: engine.KindText}},
//	    Rows: func([]engine.Value) [][]engine.Value {
//	        return [][]engine.Value{{{Kind: engine.KindText, Str: "Bergen"}}}
//	    },
//	})
//
// The zero value of Script is a valid no-op DDL/DML statement.
package enginemock
