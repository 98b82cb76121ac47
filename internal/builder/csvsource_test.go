package builder

import (
	"bytes"
	"testing"

	"github.com/pierrec/lz4/v4"
)

func compressCSV(t *testing.T, csvText string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write([]byte(csvText)); err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close lz4 writer failed: %v", err)
	}
	return buf.Bytes()
}

func TestParseBuilderCSV(t *testing.T) {
	raw := compressCSV(t, ""+
		"time,user,coin,side,px,sz,closed_pnl,builder_fee\n"+
		"2026-02-10T08:15:30Z,0xABCDEF1234567890abcdef1234567890ABCDEF12,BTC,Bid,90000.5,0.25,0,0.12\n"+
		"2026-02-10T09:00:00Z,0xabcdef1234567890abcdef1234567890abcdef12,ETH,Ask,3000,2,15.5,0.03\n")

	fills, err := parseBuilderCSV(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(fills))
	}

	first := fills[0]
	if first.User != "0xabcdef1234567890abcdef1234567890abcdef12" {
		t.Errorf("user should be lowercased, got %s", first.User)
	}
	if !first.IsBuy || first.Coin != "BTC" || first.Px != 90000.5 || first.Sz != 0.25 {
		t.Errorf("unexpected first fill: %+v", first)
	}
	if first.TimeMs != 1770711330000 {
		t.Errorf("unexpected time: %d", first.TimeMs)
	}

	second := fills[1]
	if second.IsBuy {
		t.Errorf("Ask side should parse as sell")
	}
	if second.ClosedPnl != 15.5 || second.BuilderFee != 0.03 {
		t.Errorf("unexpected second fill: %+v", second)
	}
}

func TestParseBuilderCSVShuffledColumns(t *testing.T) {
	raw := compressCSV(t, ""+
		"coin,px,sz,side,user,time,builder_fee,closed_pnl\n"+
		"SOL,150.25,10,Bid,0x1111111111111111111111111111111111111111,2026-02-10T00:00:01Z,0.01,0\n")
	fills, err := parseBuilderCSV(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(fills) != 1 || fills[0].Coin != "SOL" || fills[0].Px != 150.25 {
		t.Fatalf("unexpected result: %+v", fills)
	}
}

func TestParseBuilderCSVMissingColumn(t *testing.T) {
	raw := compressCSV(t, "time,user,coin,side,px\n2026-02-10T00:00:01Z,0x11,BTC,Bid,1\n")
	if _, err := parseBuilderCSV(raw); err == nil {
		t.Fatal("expected error for missing sz column")
	}
}

func TestParseBuilderCSVGarbage(t *testing.T) {
	if _, err := parseBuilderCSV([]byte("not lz4 at all")); err == nil {
		t.Fatal("expected error for non-lz4 payload")
	}
}
