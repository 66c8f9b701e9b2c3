package parquet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/OFFIS-RIT/graphlift/pkg/loader"

	"github.com/parquet-go/parquet-go"
)

const readBatch = 128

// ParquetDecoder decodes the Parquet tables GraphRAG writes.
//
// Scalar columns map to one record key. Nested non-repeated leaves use their
// dotted path. Repeated columns become []any; a list of structs becomes
// []any of map[string]any keyed by the struct field names.
type ParquetDecoder struct{}

func NewParquetDecoder() *ParquetDecoder {
	return &ParquetDecoder{}
}

func (d *ParquetDecoder) Extension() string {
	return "parquet"
}

type column struct {
	key      string
	field    string
	repeated bool
	elemDef  int
}

func (d *ParquetDecoder) Decode(data []byte) ([]loader.Record, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	cols := columns(f.Schema())
	out := make([]loader.Record, 0, f.NumRows())
	buf := make([]parquet.Row, readBatch)

	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				out = append(out, assemble(row, cols))
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				rows.Close()
				return nil, fmt.Errorf("failed to read parquet rows: %w", err)
			}
			if n == 0 {
				break
			}
		}
		rows.Close()
	}
	return out, nil
}

func columns(schema *parquet.Schema) []column {
	paths := schema.Columns()
	cols := make([]column, len(paths))
	repeatedLeaves := map[string]int{}

	for i, path := range paths {
		repeated, elemDef := levels(schema, path)
		cols[i] = column{repeated: repeated, elemDef: elemDef}
		if repeated {
			cols[i].key = path[0]
			repeatedLeaves[path[0]]++
		} else {
			cols[i].key = strings.Join(path, ".")
		}
	}

	for i, path := range paths {
		if cols[i].repeated && repeatedLeaves[path[0]] > 1 {
			cols[i].field = path[len(path)-1]
		}
	}
	return cols
}

// levels reports whether the leaf at path sits below a repeated node and the
// definition level at which an element of the outermost list exists.
func levels(schema *parquet.Schema, path []string) (repeated bool, elemDef int) {
	var node parquet.Node = schema
	def := 0
	for _, name := range path {
		var next parquet.Node
		for _, f := range node.Fields() {
			if f.Name() == name {
				next = f
				break
			}
		}
		if next == nil {
			return repeated, elemDef
		}
		if next.Optional() {
			def++
		}
		if next.Repeated() {
			def++
			if !repeated {
				repeated = true
				elemDef = def
			}
		}
		node = next
	}
	return repeated, elemDef
}

func assemble(row parquet.Row, cols []column) loader.Record {
	rec := make(loader.Record, len(cols))
	lists := map[string][]any{}
	structs := map[string]map[string][]any{}

	for _, v := range row {
		idx := v.Column()
		if idx < 0 || idx >= len(cols) {
			continue
		}
		c := cols[idx]

		if !c.repeated {
			if !v.IsNull() {
				rec[c.key] = convert(v)
			}
			continue
		}

		if c.field == "" {
			l := lists[c.key]
			if l == nil {
				l = []any{}
			}
			if v.DefinitionLevel() >= c.elemDef {
				l = append(l, convert(v))
			}
			lists[c.key] = l
			continue
		}

		fields := structs[c.key]
		if fields == nil {
			fields = map[string][]any{}
			structs[c.key] = fields
		}
		if v.DefinitionLevel() >= c.elemDef {
			fields[c.field] = append(fields[c.field], convert(v))
		} else if fields[c.field] == nil {
			fields[c.field] = []any{}
		}
	}

	for k, l := range lists {
		rec[k] = l
	}
	for k, fields := range structs {
		n := 0
		for _, vals := range fields {
			n = max(n, len(vals))
		}
		items := make([]any, n)
		for i := range items {
			m := make(map[string]any, len(fields))
			for name, vals := range fields {
				if i < len(vals) {
					m[name] = vals[i]
				}
			}
			items[i] = m
		}
		rec[k] = items
	}
	return rec
}

func convert(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
