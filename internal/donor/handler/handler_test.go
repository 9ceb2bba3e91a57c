package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"hemolink/internal/donor/handler/mocks"
	"hemolink/internal/donor/models"
	"hemolink/internal/eligibility"
	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
	"hemolink/pkg/platform/middleware/auth"
)

type DonorHandlerSuite struct {
	suite.Suite
}

func TestDonorHandlerSuite(t *testing.T) {
	suite.Run(t, new(DonorHandlerSuite))
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(mockService, logger), mockService
}

func newJSONRequest(t *testing.T, method, endpoint string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	return httptest.NewRequest(method, endpoint, &buf)
}

func authed(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), userID, "donor"))
}

func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, expectedCode, resp["error"])
}

func sampleDonor() *models.Donor {
	donated := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return &models.Donor{
		ID:               id.NewDonorID(),
		Name:             "Asha Rao",
		BloodGroup:       models.OPositive,
		City:             "Mumbai",
		Latitude:         19.076,
		Longitude:        72.8777,
		IsAvailableNow:   true,
		LastDonationDate: &donated,
		CreatedAt:        time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (s *DonorHandlerSuite) TestHandleCreateDonor() {
	s.T().Run("201 - donor created", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		donor := sampleDonor()
		mockService.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *models.ProfileRequest) (*models.Donor, error) {
				assert.Equal(t, models.OPositive, req.ParsedBloodGroup())
				return donor, nil
			})

		lat, lng := 19.076, 72.8777
		req := newJSONRequest(t, http.MethodPost, "/api/donors", models.ProfileRequest{
			Name: "Asha Rao", BloodGroup: "o+", City: "Mumbai", Lat: &lat, Lng: &lng,
		})
		w := httptest.NewRecorder()
		handler.handleCreateDonor(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, donor.ID.String(), resp["id"])
		assert.Equal(t, "O+", resp["bloodGroup"])
	})

	s.T().Run("400 - missing blood group", func(t *testing.T) {
		handler, _ := newTestHandler(t)
		lat, lng := 19.076, 72.8777
		req := newJSONRequest(t, http.MethodPost, "/api/donors", models.ProfileRequest{
			Name: "Asha Rao", City: "Mumbai", Lat: &lat, Lng: &lng,
		})
		w := httptest.NewRecorder()
		handler.handleCreateDonor(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "validation_failed")
	})

	s.T().Run("400 - malformed body", func(t *testing.T) {
		handler, _ := newTestHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/donors", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		handler.handleCreateDonor(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "bad_request")
	})

	s.T().Run("409 - owner already has a profile", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		mockService.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "donor profile already exists for this account"))

		lat, lng := 19.076, 72.8777
		req := newJSONRequest(t, http.MethodPost, "/api/donors", models.ProfileRequest{
			Name: "Asha Rao", BloodGroup: "O+", City: "Mumbai", Lat: &lat, Lng: &lng,
		})
		w := httptest.NewRecorder()
		handler.handleCreateDonor(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assertErrorResponse(t, w, "conflict")
	})
}

func (s *DonorHandlerSuite) TestHandleListDonors() {
	s.T().Run("200 - scored listing in service order", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		first := sampleDonor()
		second := sampleDonor()
		second.Name = "Binod Shah"
		mockService.EXPECT().ListWithScores(gomock.Any()).Return([]models.ScoredDonor{
			{Donor: *first, Result: eligibility.Result{Score: 95, Reasons: []string{"Marked available now"}, Source: eligibility.SourceLocal}},
			{Donor: *second, Result: eligibility.Result{Score: 40, Reasons: []string{"Recently donated – check eligibility"}, Source: eligibility.SourceRemote}},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/donors", nil)
		w := httptest.NewRecorder()
		handler.handleListDonors(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.ListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Donors, 2)
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "Asha Rao", resp.Donors[0].Donor.Name)
		assert.Equal(t, 95, resp.Donors[0].Score)
		assert.Equal(t, "remote", resp.Donors[1].Source)
	})

	s.T().Run("200 - empty listing is an array, not null", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		mockService.EXPECT().ListWithScores(gomock.Any()).Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/donors", nil)
		w := httptest.NewRecorder()
		handler.handleListDonors(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		donors, ok := resp["donors"].([]any)
		require.True(t, ok, "donors must be a JSON array")
		assert.Empty(t, donors)
	})
}

func (s *DonorHandlerSuite) TestHandleGetDonor() {
	router := func(t *testing.T) (chi.Router, *mocks.MockService) {
		handler, mockService := newTestHandler(t)
		r := chi.NewRouter()
		handler.Register(r)
		return r, mockService
	}

	s.T().Run("200 - donor found", func(t *testing.T) {
		r, mockService := router(t)
		donor := sampleDonor()
		mockService.EXPECT().Get(gomock.Any(), donor.ID).Return(donor, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/donors/"+donor.ID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Asha Rao", resp["name"])
	})

	s.T().Run("404 - unknown donor", func(t *testing.T) {
		r, mockService := router(t)
		mockService.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "donor not found"))

		req := httptest.NewRequest(http.MethodGet, "/api/donors/"+id.NewDonorID().String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorResponse(t, w, "not_found")
	})

	s.T().Run("400 - malformed donor id", func(t *testing.T) {
		r, _ := router(t)
		req := httptest.NewRequest(http.MethodGet, "/api/donors/not-a-uuid", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "bad_request")
	})
}

func (s *DonorHandlerSuite) TestHandleMyProfile() {
	s.T().Run("200 - own profile with score", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		userID := id.NewUserID()
		donor := sampleDonor()
		donor.OwnerID = userID
		mockService.EXPECT().MyProfile(gomock.Any(), userID).Return(&models.ScoredDonor{
			Donor:  *donor,
			Result: eligibility.Result{Score: 85, Reasons: []string{"High suitability score"}, Source: eligibility.SourceLocal},
		}, nil)

		req := authed(httptest.NewRequest(http.MethodGet, "/api/donors/me", nil), userID)
		w := httptest.NewRecorder()
		handler.handleMyProfile(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.ScoredDonorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 85, resp.Score)
		assert.Equal(t, donor.ID.String(), resp.Donor.ID)
	})

	s.T().Run("500 - auth context missing", func(t *testing.T) {
		handler, _ := newTestHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/api/donors/me", nil)
		w := httptest.NewRecorder()
		handler.handleMyProfile(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assertErrorResponse(t, w, "internal_error")
	})

	s.T().Run("404 - account has no profile yet", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		userID := id.NewUserID()
		mockService.EXPECT().
			MyProfile(gomock.Any(), userID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "donor profile not found"))

		req := authed(httptest.NewRequest(http.MethodGet, "/api/donors/me", nil), userID)
		w := httptest.NewRecorder()
		handler.handleMyProfile(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorResponse(t, w, "not_found")
	})
}

func (s *DonorHandlerSuite) TestHandleUpdateProfile() {
	handler, mockService := newTestHandler(s.T())
	userID := id.NewUserID()
	donor := sampleDonor()
	donor.OwnerID = userID
	donor.City = "Pune"
	mockService.EXPECT().
		UpdateProfile(gomock.Any(), userID, gomock.Any()).
		Return(donor, nil)

	lat, lng := 18.5204, 73.8567
	req := authed(newJSONRequest(s.T(), http.MethodPut, "/api/donors/me", models.ProfileRequest{
		Name: "Asha Rao", BloodGroup: "O+", City: "Pune", Lat: &lat, Lng: &lng,
	}), userID)
	w := httptest.NewRecorder()
	handler.handleUpdateProfile(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("Pune", resp["city"])
}

func (s *DonorHandlerSuite) TestHandleSetAvailability() {
	s.T().Run("200 - availability flipped", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		userID := id.NewUserID()
		donor := sampleDonor()
		donor.OwnerID = userID
		donor.IsAvailableNow = false
		mockService.EXPECT().SetAvailability(gomock.Any(), userID, false).Return(donor, nil)

		available := false
		req := authed(newJSONRequest(t, http.MethodPatch, "/api/donors/me/availability",
			models.SetAvailabilityRequest{IsAvailableNow: &available}), userID)
		w := httptest.NewRecorder()
		handler.handleSetAvailability(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["isAvailableNow"])
	})

	s.T().Run("400 - flag missing from body", func(t *testing.T) {
		handler, _ := newTestHandler(t)
		req := authed(newJSONRequest(t, http.MethodPatch, "/api/donors/me/availability",
			map[string]any{}), id.NewUserID())
		w := httptest.NewRecorder()
		handler.handleSetAvailability(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "validation_failed")
	})
}
