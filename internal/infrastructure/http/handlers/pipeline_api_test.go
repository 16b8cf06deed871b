package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/savorlabs/nutrimatch/internal/application/pipeline"
	"github.com/savorlabs/nutrimatch/internal/domain/profile"
)

// stubPipeline records the request each operation was invoked with and
// returns canned responses.
type stubPipeline struct {
	searchReq      pipeline.SearchRequest
	recommendProf  profile.UserProfile
	recommendN     int
	recommendDyn   bool
	subIngredient  string
	subRestricts   []string
	subAllergies   []string
	searchResp     pipeline.SearchResponse
	recommendResp  pipeline.RecommendResponse
	substituteResp pipeline.SubstitutionResponse
	stats          pipeline.Stats
}

func (s *stubPipeline) Search(req pipeline.SearchRequest) pipeline.SearchResponse {
	s.searchReq = req
	return s.searchResp
}

func (s *stubPipeline) Recommend(userProfile profile.UserProfile, n int, includeDynamic bool) pipeline.RecommendResponse {
	s.recommendProf = userProfile
	s.recommendN = n
	s.recommendDyn = includeDynamic
	return s.recommendResp
}

func (s *stubPipeline) Substitutions(ingredient string, restrictions, allergies []string) pipeline.SubstitutionResponse {
	s.subIngredient = ingredient
	s.subRestricts = restrictions
	s.subAllergies = allergies
	return s.substituteResp
}

func (s *stubPipeline) Stats() pipeline.Stats {
	return s.stats
}

func newTestHandlers() (*PipelineHandlers, *stubPipeline) {
	stub := &stubPipeline{
		searchResp: pipeline.SearchResponse{
			Query:      "pasta",
			TotalFound: 2,
		},
		recommendResp: pipeline.RecommendResponse{
			SearchQuery: "healthy recipe",
		},
		substituteResp: pipeline.SubstitutionResponse{
			OriginalIngredient: "milk",
			TotalOptions:       3,
		},
		stats: pipeline.Stats{TotalRecipes: 12},
	}
	return NewPipelineHandlers(stub, zap.NewNop()), stub
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSearch_Success(t *testing.T) {
	h, stub := newTestHandlers()

	rec := postJSON(t, h.Search, `{"query":"pasta","dietary_restrictions":["vegan"],"n_results":5}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Search completed successfully", resp.Message)
	assert.Empty(t, resp.Error)

	assert.Equal(t, "pasta", stub.searchReq.Query)
	assert.Equal(t, []string{"vegan"}, stub.searchReq.DietaryRestrictions)
	assert.Equal(t, 5, stub.searchReq.NResults)
}

func TestSearch_IncludeDynamicDefaultsTrue(t *testing.T) {
	h, stub := newTestHandlers()

	postJSON(t, h.Search, `{"query":"pasta"}`)
	assert.True(t, stub.searchReq.IncludeDynamic)

	postJSON(t, h.Search, `{"query":"pasta","include_dynamic":false}`)
	assert.False(t, stub.searchReq.IncludeDynamic)

	postJSON(t, h.Search, `{"query":"pasta","include_dynamic":true}`)
	assert.True(t, stub.searchReq.IncludeDynamic)
}

func TestSearch_InvalidJSON(t *testing.T) {
	h, _ := newTestHandlers()

	rec := postJSON(t, h.Search, `{"query":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid JSON request body", resp.Error)
}

func TestSearch_MissingQuery(t *testing.T) {
	h, _ := newTestHandlers()

	rec := postJSON(t, h.Search, `{"n_results":3}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestSearch_NegativeNResults(t *testing.T) {
	h, _ := newTestHandlers()

	rec := postJSON(t, h.Search, `{"query":"pasta","n_results":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommend_MapsProfile(t *testing.T) {
	h, stub := newTestHandlers()

	rec := postJSON(t, h.Recommend, `{
		"dietary_restrictions": ["vegan"],
		"allergies": ["soy"],
		"health_conditions": ["diabetes"],
		"cuisine_preferences": ["asian"],
		"nutritional_goals": {"protein": 30},
		"n_results": 4
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Recommendations generated successfully", resp.Message)

	assert.Equal(t, []string{"vegan"}, stub.recommendProf.DietaryRestrictions)
	assert.Equal(t, []string{"soy"}, stub.recommendProf.Allergies)
	assert.Equal(t, []string{"diabetes"}, stub.recommendProf.HealthConditions)
	assert.Equal(t, []string{"asian"}, stub.recommendProf.CuisinePreferences)
	assert.Equal(t, map[string]float64{"protein": 30}, stub.recommendProf.NutritionalGoals)
	assert.Equal(t, 4, stub.recommendN)
	assert.True(t, stub.recommendDyn)
}

func TestRecommend_EmptyProfileAllowed(t *testing.T) {
	h, _ := newTestHandlers()

	rec := postJSON(t, h.Recommend, `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubstitutions_Success(t *testing.T) {
	h, stub := newTestHandlers()

	rec := postJSON(t, h.Substitutions, `{"ingredient":"milk","dietary_restrictions":["vegan"],"allergies":["dairy"]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)

	assert.Equal(t, "milk", stub.subIngredient)
	assert.Equal(t, []string{"vegan"}, stub.subRestricts)
	assert.Equal(t, []string{"dairy"}, stub.subAllergies)
}

func TestSubstitutions_MissingIngredient(t *testing.T) {
	h, _ := newTestHandlers()

	rec := postJSON(t, h.Substitutions, `{"allergies":["dairy"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	h, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Statistics retrieved successfully", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(12), data["total_recipes"])
}
