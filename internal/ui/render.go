package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/reccaster/internal/catalog"
	"github.com/muurk/reccaster/internal/discovery"
	"github.com/muurk/reccaster/internal/protocol"
)

// RenderCatalog renders the records in catalog order with the identifier
// each receives in an upload, followed by client-level properties.
func RenderCatalog(cat *catalog.Catalog, baseID uint32) string {
	var b strings.Builder

	records := cat.Records()
	if len(records) == 0 {
		b.WriteString(MutedStyle.Render("  (no records)"))
		b.WriteString("\n")
	} else {
		typeWidth := len("TYPE")
		nameWidth := len("NAME")
		for _, r := range records {
			typeWidth = max(typeWidth, len(r.Type))
			nameWidth = max(nameWidth, len(r.Name))
		}

		heading := fmt.Sprintf("  %-6s %-*s %-*s %s", "RECID", typeWidth, "TYPE", nameWidth, "NAME", "ALIAS")
		b.WriteString(TableHeaderStyle.Render(heading))
		b.WriteString("\n")

		for i, r := range records {
			fmt.Fprintf(&b, "  %-6d %-*s %-*s %s\n", baseID+uint32(i), typeWidth, r.Type, nameWidth, r.Name, r.Alias)
			for _, k := range r.PropertyKeys() {
				b.WriteString(MutedStyle.Render(fmt.Sprintf("         %s = %s", k, r.Properties[k])))
				b.WriteString("\n")
			}
		}
	}

	if keys := cat.PropertyKeys(); len(keys) > 0 {
		b.WriteString("\n")
		b.WriteString(TableHeaderStyle.Render("  CLIENT PROPERTIES"))
		b.WriteString("\n")
		for _, k := range keys {
			v, _ := cat.Property(k)
			fmt.Fprintf(&b, "  %s = %s\n", k, v)
		}
	}

	return b.String()
}

// RenderUploadPlan renders the numbered message sequence of an upload
func RenderUploadPlan(plan []protocol.Message) string {
	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("  UPLOAD (%d messages)", len(plan))))
	b.WriteString("\n")

	width := len(fmt.Sprint(len(plan)))
	for i, msg := range plan {
		fmt.Fprintf(&b, "  %*d  %s\n", width, i+1, msg)
	}
	return b.String()
}

// RenderServer renders one discovered server on a single line
func RenderServer(srv *discovery.Server) string {
	return fmt.Sprintf("  %s  %-21s  key %s  via %s",
		MutedStyle.Render(srv.DiscoveredAt.Format(time.TimeOnly)),
		srv.Endpoint(),
		fmt.Sprintf("0x%08x", srv.Announcement.ServerKey),
		srv.Source,
	)
}

// RenderServers renders a table of servers found by a scan
func RenderServers(servers []*discovery.Server) string {
	if len(servers) == 0 {
		return MutedStyle.Render("  No RecSync servers announced themselves.") + "\n"
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("  %-21s  %-10s  %-21s  %s", "SERVER", "KEY", "SOURCE", "SEEN")))
	b.WriteString("\n")
	for _, srv := range servers {
		fmt.Fprintf(&b, "  %-21s  0x%08x  %-21s  %d\n",
			srv.Endpoint(), srv.Announcement.ServerKey, srv.Source, srv.Count)
	}
	return b.String()
}
