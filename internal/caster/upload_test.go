package caster

import (
	"reflect"
	"testing"

	"github.com/muurk/reccaster/internal/catalog"
	"github.com/muurk/reccaster/internal/protocol"
)

func mustCatalog(t *testing.T, records []catalog.Record, props map[string]string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(records, props)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func TestUploadPlan(t *testing.T) {
	tests := []struct {
		name    string
		records []catalog.Record
		props   map[string]string
		want    []protocol.Message
	}{
		{
			name:    "empty catalog",
			records: nil,
			want:    []protocol.Message{protocol.UploadDone{}},
		},
		{
			name: "alias and properties then plain record",
			records: []catalog.Record{
				{
					Name:       "DEV:TEMP",
					Type:       "ai",
					Alias:      "LAB:TEMP",
					Properties: map[string]string{"k2": "v2", "k1": "v1"},
				},
				catalog.NewRecord("DEV:SETPOINT", "ao"),
			},
			want: []protocol.Message{
				protocol.AddRecord{RecID: 100, Kind: protocol.KindRecord, Type: "ai", Name: "DEV:TEMP"},
				protocol.AddRecord{RecID: 100, Kind: protocol.KindAlias, Type: "ai", Name: "LAB:TEMP"},
				protocol.AddInfo{RecID: 100, Key: "k1", Value: "v1"},
				protocol.AddInfo{RecID: 100, Key: "k2", Value: "v2"},
				protocol.AddRecord{RecID: 101, Kind: protocol.KindRecord, Type: "ao", Name: "DEV:SETPOINT"},
				protocol.UploadDone{},
			},
		},
		{
			name:    "client properties come first under id 0",
			records: []catalog.Record{catalog.NewRecord("X", "bi")},
			props:   map[string]string{"HOSTNAME": "ioc01", "ENGINEER": "ops"},
			want: []protocol.Message{
				protocol.AddInfo{RecID: 0, Key: "ENGINEER", Value: "ops"},
				protocol.AddInfo{RecID: 0, Key: "HOSTNAME", Value: "ioc01"},
				protocol.AddRecord{RecID: 100, Kind: protocol.KindRecord, Type: "bi", Name: "X"},
				protocol.UploadDone{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UploadPlan(mustCatalog(t, tt.records, tt.props))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UploadPlan() =\n%v\nwant\n%v", got, tt.want)
			}
			if cap(got) != len(got) {
				t.Errorf("UploadPlan() capacity %d, want exact size %d", cap(got), len(got))
			}
		})
	}
}

func TestUploadPlan_Deterministic(t *testing.T) {
	props := map[string]string{}
	for _, k := range []string{"z", "a", "m", "b", "y", "c"} {
		props[k] = k
	}
	cat := mustCatalog(t, []catalog.Record{{Name: "X", Type: "ai", Properties: props}}, nil)

	first := UploadPlan(cat)
	for i := 0; i < 10; i++ {
		if got := UploadPlan(cat); !reflect.DeepEqual(got, first) {
			t.Fatalf("UploadPlan() differs between calls: %v vs %v", got, first)
		}
	}
}
