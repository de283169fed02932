package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/divvy/internal/importer"
)

func TestParse(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    []importer.Row
		wantErr error
	}

	tests := []testCase{
		{
			name:  "CommaSeparated",
			input: "description,amount,payer\nDinner,30.00,Alice\nTaxi,\"1,200.50\",bob@example.com\n",
			want: []importer.Row{
				{Line: 2, Description: "Dinner", Amount: "30.00", Payer: "Alice"},
				{Line: 3, Description: "Taxi", Amount: "1200.50", Payer: "bob@example.com"},
			},
		},
		{
			name:  "SemicolonWithPreambleAndBlankRows",
			input: "Trip export\n\nDescrição;Montante;Pagador\nJantar;1.234,56;Alice\n;;\nCafé;3,50;Bob\n",
			want: []importer.Row{
				{Line: 4, Description: "Jantar", Amount: "1234.56", Payer: "Alice"},
				{Line: 6, Description: "Café", Amount: "3.50", Payer: "Bob"},
			},
		},
		{
			name:  "ReorderedColumnsWithExtras",
			input: "Paid By,Date,Total,Item\nAlice,2025-01-01,12,Lunch\n",
			want: []importer.Row{
				{Line: 2, Description: "Lunch", Amount: "12", Payer: "Alice"},
			},
		},
		{
			name:  "HeaderOnly",
			input: "description,amount,payer\n",
			want:  nil,
		},
		{
			name:    "NoHeader",
			input:   "date,amount\n2025-01-01,12\n",
			wantErr: importer.ErrNoHeader,
		},
		{
			name:    "Empty",
			input:   "",
			wantErr: importer.ErrNoHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.Parse(strings.NewReader(tt.input))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
