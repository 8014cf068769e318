package bankdelivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/go-petr/accounts-api/pkg/bankpkg"
	"github.com/go-petr/accounts-api/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testBanks = `
- ispb: "00000000"
  name: BCO DO BRASIL S.A.
  code: 1
  fullName: Banco do Brasil S.A.
- ispb: "60746948"
  name: BCO BRADESCO S.A.
  code: 237
  fullName: Banco Bradesco S.A.
`

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	registry, err := bankpkg.Load([]byte(testBanks))
	if err != nil {
		t.Fatalf("bankpkg.Load(testBanks) returned error: %v", err)
	}

	h := NewHandler(registry)

	server := gin.New()
	server.GET("/banks", h.List)
	server.GET("/banks/:ispb", h.Get)

	return server
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name           string
		ispb           string
		wantStatusCode int
		wantError      string
		wantBank       bankpkg.Bank
	}{
		{
			name:           "OK",
			ispb:           "00000000",
			wantStatusCode: http.StatusOK,
			wantBank: bankpkg.Bank{
				ISPB:     "00000000",
				Name:     "BCO DO BRASIL S.A.",
				Code:     1,
				FullName: "Banco do Brasil S.A.",
			},
		},
		{
			name:           "NotFound",
			ispb:           "99999999",
			wantStatusCode: http.StatusNotFound,
			wantError:      ErrBankNotFound.Error(),
		},
		{
			name:           "WrongLength",
			ispb:           "123",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ISPB must be 8 characters long",
		},
		{
			name:           "NotNumeric",
			ispb:           "abcdefgh",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ISPB must be numeric",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t)

			req := httptest.NewRequest(http.MethodGet, "/banks/"+tc.ispb, nil)
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{Data: &data{}}
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			got := res.Data.(*data)
			if diff := cmp.Diff(tc.wantBank, got.Bank); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestList(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/banks", nil)
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Status code: got %v, want %v", recorder.Code, http.StatusOK)
	}

	res := web.Response{Data: &dataBanks{}}
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	got := res.Data.(*dataBanks)

	want := []string{"00000000", "60746948"}
	gotISPB := make([]string, 0, len(got.Banks))

	for _, b := range got.Banks {
		gotISPB = append(gotISPB, b.ISPB)
	}

	if diff := cmp.Diff(want, gotISPB); diff != "" {
		t.Errorf("ISPB order mismatch (-want +got):\n%s", diff)
	}
}
