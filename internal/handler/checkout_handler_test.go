package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cresshoe/internal/cart"
	"cresshoe/internal/checkout"
	"cresshoe/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSubmitter is a mock implementation of OrderSubmitter.
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, store checkout.CartStore, fields model.CustomerFields) (*model.SubmitResult, error) {
	args := m.Called(ctx, store, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmitResult), args.Error(1)
}

func TestCheckoutHandler_Submit(t *testing.T) {
	logger := zerolog.Nop()

	fields := model.CustomerFields{Name: "Wanjiru", Phone: "+254 700 000 001", Address: "Ngong Road"}

	tests := []struct {
		name           string
		method         string
		body           string
		mockReturn     *model.SubmitResult
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success via API",
			method:         http.MethodPost,
			mockReturn:     &model.SubmitResult{Channel: checkout.ChannelAPI, OrderReference: "CS-1A2B3C4D"},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Success via WhatsApp",
			method:         http.MethodPost,
			mockReturn:     &model.SubmitResult{Channel: checkout.ChannelWhatsApp, RedirectURL: "https://wa.me/254700000000?text=hi"},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Missing fields",
			method:         http.MethodPost,
			mockError:      &model.ValidationError{Fields: []string{"name", "phone"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
			expectService:  true,
		},
		{
			name:           "Empty cart",
			method:         http.MethodPost,
			mockError:      model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeEmptyCart,
			expectService:  true,
		},
		{
			name:           "Submission already running",
			method:         http.MethodPost,
			mockError:      model.ErrSubmissionInFlight,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeSubmissionInFlight,
			expectService:  true,
		},
		{
			name:           "Channel failure",
			method:         http.MethodPost,
			mockError:      &model.SubmissionError{Channel: checkout.ChannelAPI, Message: "order intake unreachable"},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   model.ErrCodeSubmissionFailed,
			expectService:  true,
		},
		{
			name:           "Unexpected error",
			method:         http.MethodPost,
			mockError:      errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPost,
			body:           "{",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedCode:   model.ErrCodeMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := cart.NewRegistry(cart.DefaultNamespace, cart.NewMemoryPersister(), logger)
			submitter := new(MockSubmitter)
			handler := NewCheckoutHandler(registry, submitter, logger)

			if tt.expectService {
				submitter.On("Submit", mock.Anything, mock.MatchedBy(func(s checkout.CartStore) bool {
					return s.Key() == cart.DefaultNamespace
				}), fields).Return(tt.mockReturn, tt.mockError)
			}

			body := tt.body
			if body == "" {
				raw, err := json.Marshal(fields)
				require.NoError(t, err)
				body = string(raw)
			}

			req := httptest.NewRequest(tt.method, "/api/checkout", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.Submit(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp model.SubmitResult
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, *tt.mockReturn, resp)
			} else {
				var errResp model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.Equal(t, tt.expectedCode, errResp.Error)
			}

			submitter.AssertExpectations(t)
		})
	}
}

func TestCheckoutHandler_ValidationFieldsExposed(t *testing.T) {
	logger := zerolog.Nop()
	registry := cart.NewRegistry(cart.DefaultNamespace, cart.NewMemoryPersister(), logger)
	submitter := new(MockSubmitter)
	handler := NewCheckoutHandler(registry, submitter, logger)

	submitter.On("Submit", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &model.ValidationError{Fields: []string{"phone"}})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"name":"Wanjiru","phone":"abc"}`))
	req.Header.Set(SessionHeader, "alice")
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, []string{"phone"}, errResp.Fields)

	submitter.AssertCalled(t, "Submit", mock.Anything, mock.MatchedBy(func(s checkout.CartStore) bool {
		return s.Key() == cart.DefaultNamespace+":alice"
	}), mock.Anything)
}

func TestCheckoutHandler_EndToEndWithWhatsApp(t *testing.T) {
	logger := zerolog.Nop()
	registry := cart.NewRegistry(cart.DefaultNamespace, cart.NewMemoryPersister(), logger)

	var opened string
	channel := checkout.NewWhatsAppChannel("+254 700 000 000", "KSh", checkout.LinkOpenerFunc(func(ctx context.Context, url string) error {
		opened = url
		return nil
	}), logger)
	handler := NewCheckoutHandler(registry, checkout.NewSubmitter(channel, logger), logger)

	store := registry.Get(context.Background(), DefaultSession)
	store.Add(context.Background(), catalogueProduct(), 42, 2)
	store.Open()

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"name":"Wanjiru","phone":"0700 000 001"}`))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, checkout.ChannelWhatsApp, resp.Channel)
	assert.Equal(t, opened, resp.RedirectURL)
	assert.True(t, strings.HasPrefix(resp.RedirectURL, "https://wa.me/254700000000?text="))

	assert.Equal(t, 0, store.Len())
	assert.False(t, store.IsOpen())
}
