package jsonrpc

import (
	"reflect"
	"testing"
)

func TestSplitBatch(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []string
		wantErr bool
	}{
		{
			name: "mixed requests and responses",
			data: `[{"jsonrpc":"2.0","method":"sum","params":[1,2],"id":1},{"jsonrpc":"2.0","result":{"ok":true},"id":2}]`,
			want: []string{
				`{"jsonrpc":"2.0","method":"sum","params":[1,2],"id":1}`,
				`{"jsonrpc":"2.0","result":{"ok":true},"id":2}`,
			},
		},
		{
			name: "nested braces and string escapes",
			data: `[{"jsonrpc":"2.0","method":"m","params":{"a":"}\"}","b":{"c":1}},"id":1}]`,
			want: []string{
				`{"jsonrpc":"2.0","method":"m","params":{"a":"}\"}","b":{"c":1}},"id":1}`,
			},
		},
		{
			name: "whitespace between elements",
			data: "[\n  {\"jsonrpc\":\"2.0\",\"method\":\"a\"}, \n  {\"jsonrpc\":\"2.0\",\"method\":\"b\"}\n]",
			want: []string{
				`{"jsonrpc":"2.0","method":"a"}`,
				`{"jsonrpc":"2.0","method":"b"}`,
			},
		},
		{
			name:    "empty array",
			data:    `[]`,
			wantErr: true,
		},
		{
			name:    "not an array",
			data:    `{"jsonrpc":"2.0"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitBatch([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			gotStrs := make([]string, len(got))
			for i, g := range got {
				gotStrs[i] = string(g)
			}
			if !reflect.DeepEqual(gotStrs, tt.want) {
				t.Fatalf("got %v, want %v", gotStrs, tt.want)
			}
		})
	}
}
