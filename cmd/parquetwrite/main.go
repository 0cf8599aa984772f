// Command parquetwrite is a smoke tool for the write path: it shreds a
// handful of synthetic records through a small built-in schema, writes
// the result to a file, and prints the footer's row groups and column
// chunks so the whole pipeline can be eyeballed end to end.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	parquet "github.com/loopmachine/parquet-go"
	"github.com/loopmachine/parquet-go/format"
	"github.com/loopmachine/parquet-go/schema"
)

var (
	outPath     string
	numRecords  int
	blockSize   int64
	compression string
	dictionary  bool
)

func init() {
	flag.StringVar(&outPath, "out", "smoke.parquet", "output file path")
	flag.IntVar(&numRecords, "records", 10, "number of synthetic records to write")
	flag.Int64Var(&blockSize, "block-size", parquet.DefaultBlockSize, "row-group soft byte bound")
	flag.StringVar(&compression, "compression", "none", "page compressor: none, snappy, gzip, lzo")
	flag.BoolVar(&dictionary, "dictionary", true, "enable dictionary encoding")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	codec, err := parseCodec(compression)
	if err != nil {
		return err
	}

	s := demoSchema()
	sink, err := parquet.NewFileSink(outPath)
	if err != nil {
		return err
	}

	runID := uuid.New()
	w, err := parquet.NewWriter(sink, s,
		parquet.WithBlockSize(blockSize),
		parquet.WithCompression(codec),
		parquet.WithDictionary(dictionary),
	)
	if err != nil {
		return err
	}

	for i := 0; i < numRecords; i++ {
		rec := demoRecord(i)
		if err := w.WriteRecord(rec); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	if err := w.Close(format.KeyValue{Key: "run-id", Value: strPtr(runID.String())}); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}

	fmt.Printf("wrote %d records to %s\n", numRecords, outPath)
	return printFooter(outPath)
}

func parseCodec(name string) (format.CompressionCodec, error) {
	switch name {
	case "none":
		return format.Uncompressed, nil
	case "snappy":
		return format.Snappy, nil
	case "gzip":
		return format.Gzip, nil
	case "lzo":
		return format.LZO, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// demoSchema describes:
//
//	message event {
//	  required int64 id;
//	  required binary name;
//	  optional int32 score;
//	  repeated int64 tags;
//	}
func demoSchema() *schema.Schema {
	return schema.New("event",
		schema.Leaf("id", schema.Required, schema.Int64),
		schema.Leaf("name", schema.Required, schema.Binary),
		schema.Leaf("score", schema.Optional, schema.Int32),
		schema.Leaf("tags", schema.Repeated, schema.Int64),
	)
}

func demoRecord(i int) parquet.Group {
	rec := parquet.Group{
		"id":   int64(i),
		"name": []byte("event-" + strconv.Itoa(i)),
		"tags": []any{int64(i), int64(i * 2)},
	}
	if i%3 != 0 {
		score := int32(i * 10)
		rec["score"] = score
	}
	return rec
}

// printFooter parses the written file's Thrift footer and tablewriter-
// renders its row groups, one line per column chunk with its NumValues,
// compression codec, and page encodings.
func printFooter(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(raw) < 12 {
		return fmt.Errorf("%s: too short to hold a parquet footer (%d bytes)", path, len(raw))
	}

	footerLen := binary.LittleEndian.Uint32(raw[len(raw)-8 : len(raw)-4])
	footerStart := len(raw) - 8 - int(footerLen)
	if footerStart < 4 {
		return fmt.Errorf("%s: footer length %d overruns file", path, footerLen)
	}

	var codec format.MetadataCodec
	var fm format.FileMetaData
	if err := codec.Unmarshal(raw[footerStart:len(raw)-8], &fm); err != nil {
		return fmt.Errorf("parse footer: %w", err)
	}

	fmt.Printf("%s: %d bytes, %d row(s) across %d row group(s)\n", path, len(raw), fm.NumRows, len(fm.RowGroups))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"row group", "column", "rows", "values", "codec", "encodings"})
	for rgIdx, rg := range fm.RowGroups {
		for _, col := range rg.Columns {
			encodings := make([]string, len(col.MetaData.Encodings))
			for i, e := range col.MetaData.Encodings {
				encodings[i] = e.String()
			}
			table.Append([]string{
				strconv.Itoa(rgIdx),
				strings.Join(col.MetaData.PathInSchema, "."),
				strconv.FormatInt(rg.NumRows, 10),
				strconv.FormatInt(col.MetaData.NumValues, 10),
				col.MetaData.Codec.String(),
				strings.Join(encodings, ","),
			})
		}
	}
	table.Render()
	return nil
}

func strPtr(s string) *string { return &s }
