package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unkn0wn-root/sheetcache/grid"
)

// GridProto encodes a raw grid as a protobuf ListValue of ListValues of
// strings, the same shape the Sheets API uses for cell values.
// The zero value is ready to use.
type GridProto struct{}

var _ Codec[grid.Grid] = GridProto{}

func (GridProto) Encode(g grid.Grid) ([]byte, error) {
	rows := make([]*structpb.Value, len(g))
	for i, row := range g {
		cells := make([]*structpb.Value, len(row))
		for j, v := range row {
			cells[j] = structpb.NewStringValue(v)
		}
		rows[i] = structpb.NewListValue(&structpb.ListValue{Values: cells})
	}
	return proto.Marshal(&structpb.ListValue{Values: rows})
}

func (GridProto) Decode(b []byte) (grid.Grid, error) {
	var lv structpb.ListValue
	if err := proto.Unmarshal(b, &lv); err != nil {
		return nil, err
	}
	out := make(grid.Grid, len(lv.GetValues()))
	for i, rv := range lv.GetValues() {
		row := rv.GetListValue()
		if row == nil {
			return nil, fmt.Errorf("gridproto: row %d is not a list", i)
		}
		cells := make([]string, len(row.GetValues()))
		for j, cv := range row.GetValues() {
			s, ok := cv.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return nil, fmt.Errorf("gridproto: cell %d,%d is not a string", i, j)
			}
			cells[j] = s.StringValue
		}
		out[i] = cells
	}
	return out, nil
}
