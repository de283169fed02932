package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/chat"
	"github.com/MrJamesThe3rd/divvy/internal/export"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	divvyHttp "github.com/MrJamesThe3rd/divvy/internal/http"
	balanceHandler "github.com/MrJamesThe3rd/divvy/internal/http/balance"
	chatHandler "github.com/MrJamesThe3rd/divvy/internal/http/chat"
	expenseHandler "github.com/MrJamesThe3rd/divvy/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/divvy/internal/http/export"
	groupHandler "github.com/MrJamesThe3rd/divvy/internal/http/group"
	importHandler "github.com/MrJamesThe3rd/divvy/internal/http/importcsv"
	"github.com/MrJamesThe3rd/divvy/internal/importer"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/money"
)

var (
	alice = group.Member{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), Name: "Alice"}
	bob   = group.Member{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), Name: "Bob"}
	carol = group.Member{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000c"), Name: "Carol"}
	trip  = &group.Group{
		ID:      uuid.MustParse("10000000-0000-0000-0000-000000000001"),
		Name:    "Trip",
		Members: []group.Member{alice, bob, carol},
	}
)

type testServer struct {
	handler   http.Handler
	completer *chat.MockCompleter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)

	members := map[uuid.UUID]*group.Member{alice.ID: &alice, bob.ID: &bob, carol.ID: &carol}

	repo := group.NewMockRepository(ctrl)
	repo.EXPECT().GetGroup(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id uuid.UUID) (*group.Group, error) {
		if id == trip.ID {
			return trip, nil
		}

		return nil, group.ErrNotFound
	}).AnyTimes()
	repo.EXPECT().GetMember(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id uuid.UUID) (*group.Member, error) {
		if m, ok := members[id]; ok {
			return m, nil
		}

		return nil, group.ErrNotFound
	}).AnyTimes()
	repo.EXPECT().ListGroupsForMember(gomock.Any(), gomock.Any()).Return([]*group.Group{trip}, nil).AnyTimes()
	repo.EXPECT().ListMembers(gomock.Any()).Return([]*group.Member{&alice, &bob, &carol}, nil).AnyTimes()
	repo.EXPECT().ListGroups(gomock.Any()).Return([]*group.Group{trip}, nil).AnyTimes()

	formatter, err := money.NewFormatter("INR")
	require.NoError(t, err)

	var (
		groupService   = group.NewService(repo)
		expenseLedger  = ledger.New(groupService)
		balanceService = balance.NewService(groupService, expenseLedger)
		exportService  = export.NewService(expenseLedger, balanceService, formatter)
		completer      = chat.NewMockCompleter(ctrl)
		chatService    = chat.NewService(groupService, expenseLedger, balanceService, completer, formatter)
		importService  = importer.NewService(groupService, expenseLedger, formatter)
	)

	return &testServer{
		handler: divvyHttp.New([]string{"*"}, divvyHttp.Handlers{
			Groups:   groupHandler.NewHandler(groupService, expenseLedger),
			Expenses: expenseHandler.NewHandler(groupService, expenseLedger),
			Balances: balanceHandler.NewHandler(balanceService),
			Export:   exportHandler.NewHandler(exportService),
			Chat:     chatHandler.NewHandler(chatService),
			Import:   importHandler.NewHandler(importService),
		}),
		completer: completer,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out
}

func TestRouter_ExpenseLifecycle(t *testing.T) {
	s := newTestServer(t)
	base := "/api/v1/groups/" + trip.ID.String()

	rec := s.do(t, http.MethodPost, base+"/expenses",
		`{"description":"Dinner","amount":300,"payer_id":"`+alice.ID.String()+`","split_type":"equal"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode(t, rec)
	assert.Equal(t, "equal", created["split_type"])
	assert.Equal(t, map[string]any{
		alice.ID.String(): float64(100),
		bob.ID.String():   float64(100),
		carol.ID.String(): float64(100),
	}, created["shares"])

	rec = s.do(t, http.MethodGet, base+"/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Dinner", listed[0]["description"])

	rec = s.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(300), decode(t, rec)["total_expenses"])

	rec = s.do(t, http.MethodGet, base+"/balances", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var balances struct {
		Balances []struct {
			MemberID uuid.UUID `json:"member_id"`
			Balance  int64     `json:"balance"`
		} `json:"balances"`
		Settlements []struct {
			From   uuid.UUID `json:"from"`
			To     uuid.UUID `json:"to"`
			Amount int64     `json:"amount"`
		} `json:"settlements"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&balances))

	require.Len(t, balances.Balances, 3)
	assert.Equal(t, int64(200), balances.Balances[0].Balance)
	assert.Equal(t, int64(-100), balances.Balances[1].Balance)
	assert.Equal(t, int64(-100), balances.Balances[2].Balance)
	require.Len(t, balances.Settlements, 2)
	assert.Equal(t, bob.ID, balances.Settlements[0].From)
	assert.Equal(t, alice.ID, balances.Settlements[0].To)
	assert.Equal(t, int64(100), balances.Settlements[0].Amount)

	rec = s.do(t, http.MethodGet, "/api/v1/members/"+bob.ID.String()+"/balances", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(-100), decode(t, rec)["total_balance"])

	rec = s.do(t, http.MethodGet, base+"/statement", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Dinner,Alice,3.00,equal,1.00,1.00,1.00")
}

func TestRouter_CreateExpense_Errors(t *testing.T) {
	type testCase struct {
		name       string
		groupID    string
		body       string
		wantStatus int
		wantKind   string
		wantMember string
	}

	tests := []testCase{
		{
			name:    "ExactSumMismatch",
			groupID: trip.ID.String(),
			body: `{"description":"Groceries","amount":120,"payer_id":"` + bob.ID.String() + `","split_type":"exact","splits":{"` +
				alice.ID.String() + `":60,"` + bob.ID.String() + `":40,"` + carol.ID.String() + `":0}}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "split_sum_mismatch",
		},
		{
			name:    "ExactValueBeyondInt64",
			groupID: trip.ID.String(),
			body: `{"description":"Groceries","amount":100,"payer_id":"` + bob.ID.String() + `","split_type":"exact","splits":{"` +
				alice.ID.String() + `":1e30,"` + bob.ID.String() + `":0,"` + carol.ID.String() + `":0}}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_split_value",
			wantMember: alice.ID.String(),
		},
		{
			name:    "ExactValueAboveAmount",
			groupID: trip.ID.String(),
			body: `{"description":"Groceries","amount":100,"payer_id":"` + bob.ID.String() + `","split_type":"exact","splits":{"` +
				alice.ID.String() + `":9223372036854775807,"` + bob.ID.String() + `":9223372036854775807,"` + carol.ID.String() + `":102}}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_split_value",
		},
		{
			name:    "MissingMember",
			groupID: trip.ID.String(),
			body: `{"description":"Groceries","amount":100,"payer_id":"` + bob.ID.String() + `","split_type":"percentage","splits":{"` +
				alice.ID.String() + `":50,"` + bob.ID.String() + `":50}}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "missing_member",
			wantMember: carol.ID.String(),
		},
		{
			name:       "NonPositiveAmount",
			groupID:    trip.ID.String(),
			body:       `{"description":"Refund","amount":0,"payer_id":"` + bob.ID.String() + `"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "non_positive_amount",
		},
		{
			name:       "UnknownPayer",
			groupID:    trip.ID.String(),
			body:       `{"description":"Taxi","amount":10,"payer_id":"` + uuid.New().String() + `"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "unknown_member",
		},
		{
			name:       "UnknownSplitType",
			groupID:    trip.ID.String(),
			body:       `{"description":"Taxi","amount":10,"payer_id":"` + bob.ID.String() + `","split_type":"shares"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownGroup",
			groupID:    uuid.New().String(),
			body:       `{"description":"Taxi","amount":10,"payer_id":"` + bob.ID.String() + `"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "InvalidGroupID",
			groupID:    "not-a-uuid",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(t, http.MethodPost, "/api/v1/groups/"+tt.groupID+"/expenses", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decode(t, rec)
			assert.NotEmpty(t, body["error"])

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, body["kind"])
			}

			if tt.wantMember != "" {
				assert.Equal(t, tt.wantMember, body["member_id"])
			}

			rec = s.do(t, http.MethodGet, "/api/v1/groups/"+trip.ID.String()+"/balances", "")
			assert.NotContains(t, rec.Body.String(), `"balance":-`, "rejected expenses must not move balances")
		})
	}
}

func TestRouter_Chat(t *testing.T) {
	s := newTestServer(t)

	s.completer.EXPECT().Model().Return("llama")
	s.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("Nobody owes anything.", nil)

	rec := s.do(t, http.MethodPost, "/api/v1/chat", `{"message":"who owes whom?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "Nobody owes anything.", body["response"])
	assert.Equal(t, true, body["success"])

	rec = s.do(t, http.MethodPost, "/api/v1/chat", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UnknownMemberBalances(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/members/"+uuid.New().String()+"/balances", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func (s *testServer) upload(t *testing.T, path, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "expenses.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func TestRouter_ImportExpenses(t *testing.T) {
	srv := newTestServer(t)
	path := "/api/v1/groups/" + trip.ID.String() + "/imports"

	rec := srv.upload(t, path, "description,amount,payer\nDinner,90.00,Alice\nTaxi,12,Dave\n")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, float64(1), body["imported"])

	failed, ok := body["failed"].([]any)
	require.True(t, ok)
	require.Len(t, failed, 1)
	assert.Equal(t, float64(3), failed[0].(map[string]any)["line"])

	rec = srv.do(t, http.MethodGet, "/api/v1/groups/"+trip.ID.String()+"/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Dinner", listed[0]["description"])
	assert.Equal(t, float64(9000), listed[0]["amount"])

	rec = srv.upload(t, path, "what,ever\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.upload(t, "/api/v1/groups/"+uuid.NewString()+"/imports", "description,amount,payer\n")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, path, `{"file":"nope"}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
