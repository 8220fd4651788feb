// Package catalog holds the records a reccaster advertises to a RecSync server.
//
// A Record is a name and a record type, an optional alias, and string
// properties. A Catalog is an ordered list of records plus client-level
// properties (for example ENGINEER or HOSTNAME) that describe the client as
// a whole.
//
// Catalogs are built once, usually from the configuration file, and never
// change while the client runs:
//
//	cat, err := catalog.New([]catalog.Record{
//	    {Name: "DEV:TEMP", Type: "ai", Alias: "LAB:TEMP", Properties: map[string]string{"EGU": "degC"}},
//	    catalog.NewRecord("DEV:SETPOINT", "ao"),
//	}, map[string]string{"ENGINEER": "ops"})
//
// New rejects records that could not be encoded: empty names or types, and
// strings longer than their wire length field allows.
//
// Properties are uploaded in sorted key order so a given catalog always
// produces the same message sequence.
package catalog
