package caster

import (
	"github.com/muurk/reccaster/internal/catalog"
	"github.com/muurk/reccaster/internal/protocol"
)

const (
	// RecordIDBase is the identifier given to the first record of an upload.
	// Lower identifiers are reserved.
	RecordIDBase uint32 = 100

	// ClientRecordID is the identifier client-level properties are sent under
	ClientRecordID uint32 = 0
)

// UploadPlan returns the messages sent in the Uploading state, in order:
// client properties, then for each record its AddRecord, its alias
// AddRecord if any and one AddInfo per property, then UploadDone.
//
// Records are numbered from RecordIDBase in catalog order and an alias
// shares its record's identifier. Properties are sent in sorted key order.
func UploadPlan(cat *catalog.Catalog) []protocol.Message {
	plan := make([]protocol.Message, 0, planSize(cat))

	for _, key := range cat.PropertyKeys() {
		value, _ := cat.Property(key)
		plan = append(plan, protocol.AddInfo{RecID: ClientRecordID, Key: key, Value: value})
	}

	for i, rec := range cat.Records() {
		recID := RecordIDBase + uint32(i)

		plan = append(plan, protocol.AddRecord{
			RecID: recID,
			Kind:  protocol.KindRecord,
			Type:  rec.Type,
			Name:  rec.Name,
		})
		if rec.HasAlias() {
			plan = append(plan, protocol.AddRecord{
				RecID: recID,
				Kind:  protocol.KindAlias,
				Type:  rec.Type,
				Name:  rec.Alias,
			})
		}
		for _, key := range rec.PropertyKeys() {
			plan = append(plan, protocol.AddInfo{RecID: recID, Key: key, Value: rec.Properties[key]})
		}
	}

	return append(plan, protocol.UploadDone{})
}

func planSize(cat *catalog.Catalog) int {
	n := len(cat.PropertyKeys()) + 1
	for _, rec := range cat.Records() {
		n += 1 + len(rec.Properties)
		if rec.HasAlias() {
			n++
		}
	}
	return n
}
