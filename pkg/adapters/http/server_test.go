package http

import (
	"bufio"
	"context"
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/draftwizard/internal/testutils"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/persistence"
	"github.com/aretw0/draftwizard/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store   *testutils.RecordingStore
	ctrl    *persistence.Controller
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{store: testutils.NewRecordingStore()}
	env.ctrl = persistence.NewController(env.store)
	reg := NewRegistry(env.ctrl, session.WithAutosave(
		persistence.WithBackstop(0),
		persistence.WithDebounce(time.Hour),
	))
	t.Cleanup(func() { _ = reg.Close(context.Background()) })

	metrics := prometheus.NewRegistry()
	env.handler = NewHandler(reg, WithGatherer(metrics))
	return env
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	return w
}

func (env *testEnv) create(t *testing.T) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/drafts", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	d := decodeDraft(t, w)
	require.NotEmpty(t, d.ID)
	return d.ID
}

func decodeDraft(t *testing.T, w *httptest.ResponseRecorder) domain.CampaignDraft {
	t.Helper()
	var d domain.CampaignDraft
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &d))
	return d
}

func decodeMove(t *testing.T, w *httptest.ResponseRecorder) (bool, domain.CampaignDraft) {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Moved bool                 `json:"moved"`
		Draft domain.CampaignDraft `json:"draft"`
	}
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Moved, resp.Draft
}

func TestServer_CreateGetList(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t)

	w := env.do(t, http.MethodGet, "/drafts/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	d := decodeDraft(t, w)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, 1, d.CurrentStep)

	w = env.do(t, http.MethodGet, "/drafts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ids":["`+id+`"]}`, w.Body.String())
}

func TestServer_UnknownDraft(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/drafts/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "draft not found")
}

func TestServer_MalformedRecord(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Save(context.Background(), domain.RecordKey("broken"), []byte("{")))

	w := env.do(t, http.MethodGet, "/drafts/broken", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestServer_PatchProfile_WeakTyping(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t)

	w := env.do(t, http.MethodPatch, "/drafts/"+id+"/profile",
		`{"companyName":"Acme AB","ageRangeMin":"25","targetingAreas":"Stockholm"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := decodeDraft(t, w).Profile
	assert.Equal(t, "Acme AB", p.CompanyName)
	assert.Equal(t, 25, p.AgeRangeMin)
	assert.Equal(t, []string{"Stockholm"}, p.TargetingAreas)

	w = env.do(t, http.MethodPatch, "/drafts/"+id+"/profile", `{"orgNumber":"556677-8899"}`)
	p = decodeDraft(t, w).Profile
	assert.Equal(t, "Acme AB", p.CompanyName, "absent fields are left alone")
	assert.Equal(t, "556677-8899", p.OrgNumber)

	w = env.do(t, http.MethodPatch, "/drafts/"+id+"/profile", `{"coverageRadiusKm":"20"}`)
	require.NotNil(t, decodeDraft(t, w).Profile.CoverageRadiusKm)
	w = env.do(t, http.MethodPatch, "/drafts/"+id+"/profile", `{"clearCoverageRadius":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decodeDraft(t, w).Profile.CoverageRadiusKm)
}

func TestServer_PatchRejectsBadBodies(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t)

	tests := []struct {
		name, path, body string
	}{
		{"unknown field", "/profile", `{"shoeSize":44}`},
		{"not json", "/content", `{headline`},
		{"unknown channel", "/channels", `{"tiktok":{"connected":true}}`},
		{"wrong type", "/budget", `{"dailyBudget":"lots"}`},
		{"image without url", "/image", `{"id":"img"}`},
		{"empty area", "/profile/areas", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPatch
			switch tt.path {
			case "/image":
				method = http.MethodPut
			case "/profile/areas":
				method = http.MethodPost
			}
			w := env.do(t, method, "/drafts/"+id+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestServer_ChannelsAndToggle(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t)

	w := env.do(t, http.MethodPatch, "/drafts/"+id+"/channels",
		`{"meta":{"connected":true,"accountId":"act_1","activeForCampaign":"true"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	meta := decodeDraft(t, w).Channels.Meta
	assert.True(t, meta.Connected)
	assert.True(t, meta.ActiveForCampaign)
	assert.Equal(t, "act_1", meta.AccountID)

	env.do(t, http.MethodPost, "/drafts/"+id+"/profile/areas", `{"area":"Stockholm"}`)
	w = env.do(t, http.MethodPost, "/drafts/"+id+"/profile/areas", `{"area":"`+domain.WholeCountry+`"}`)
	assert.Equal(t, []string{domain.WholeCountry}, decodeDraft(t, w).Profile.TargetingAreas)
}

func TestServer_Navigation(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t)
	base := "/drafts/" + id

	moved, d := decodeMove(t, env.do(t, http.MethodPost, base+"/steps/advance", ""))
	assert.False(t, moved, "refusal is a 200 with moved=false")
	assert.Equal(t, 1, d.CurrentStep)

	moved, _ = decodeMove(t, env.do(t, http.MethodPost, base+"/substeps/advance", ""))
	assert.False(t, moved)

	env.do(t, http.MethodPatch, base+"/profile", `{"companyName":"Acme AB","orgNumber":"556677-8899"}`)
	moved, d = decodeMove(t, env.do(t, http.MethodPost, base+"/substeps/advance", ""))
	assert.True(t, moved)
	assert.Equal(t, 2, d.ProfileSubStep)

	moved, d = decodeMove(t, env.do(t, http.MethodPost, base+"/substeps/jump", `{"step":"1"}`))
	assert.True(t, moved)
	assert.Equal(t, 1, d.ProfileSubStep)

	moved, _ = decodeMove(t, env.do(t, http.MethodPost, base+"/substeps/jump", `{"step":5}`))
	assert.False(t, moved, "jumps ahead by more than one step are refused")

	moved, _ = decodeMove(t, env.do(t, http.MethodPost, base+"/steps/retreat", ""))
	assert.False(t, moved)

	moved, _ = decodeMove(t, env.do(t, http.MethodPost, base+"/profile/complete", ""))
	assert.False(t, moved)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, base+"/steps/jump", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, base+"/steps/sideways", "").Code)
}

func TestServer_SaveAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t)
	base := "/drafts/" + id

	env.do(t, http.MethodPatch, base+"/content", `{"headline":"Sale"}`)
	stored, err := env.ctrl.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, stored.Content.Headline, "edits wait for the debounce")

	w := env.do(t, http.MethodPost, base+"/save", "")
	require.Equal(t, http.StatusOK, w.Code)
	stored, err = env.ctrl.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sale", stored.Content.Headline)

	env.store.SetFailing(true)
	w = env.do(t, http.MethodPost, base+"/save", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	env.store.SetFailing(false)

	w = env.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base, "").Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, "").Code, "delete is idempotent")
}

func TestServer_Image(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t)
	base := "/drafts/" + id

	w := env.do(t, http.MethodPut, base+"/image", `{"id":"img-1","url":"https://cdn.example/a.png","altText":"A","isCustom":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	img := decodeDraft(t, w).Image
	require.NotNil(t, img)
	assert.Equal(t, "img-1", img.ID)
	assert.True(t, img.IsCustom)

	w = env.do(t, http.MethodDelete, base+"/image", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeDraft(t, w).Image)
}

func TestServer_ValidationAndOnboarding(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t)
	base := "/drafts/" + id

	w := env.do(t, http.MethodGet, base+"/validation", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rep ValidationReport
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &rep))
	require.Len(t, rep.Steps, domain.CampaignSteps)
	require.Len(t, rep.ProfileSubSteps, domain.ProfileSubSteps)
	assert.False(t, rep.Steps[0].Valid)
	assert.Contains(t, rep.Steps[0].Missing, "isProfileComplete")
	assert.True(t, rep.Steps[5].Valid)
	assert.Empty(t, rep.Steps[5].Missing)
	assert.Equal(t, []string{"companyName", "orgNumber"}, rep.ProfileSubSteps[0].Missing)
	assert.False(t, rep.ProfileValid)

	w = env.do(t, http.MethodGet, base+"/onboarding", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st domain.OnboardingState
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, domain.OnboardingProfile, st.CurrentStep)
	assert.False(t, st.IsComplete)
}

func TestServer_HealthMetricsCORS(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = env.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodOptions, "/drafts", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMatches(t *testing.T) {
	step := 2
	cursorDiff := &domain.DraftDiff{CurrentStep: &step}
	budgetDiff := &domain.DraftDiff{Sections: []string{domain.SectionBudget}}

	assert.True(t, Matches(budgetDiff, nil))
	assert.True(t, Matches(budgetDiff, []string{"profile", " budget"}))
	assert.False(t, Matches(budgetDiff, []string{WatchCursor}))
	assert.True(t, Matches(cursorDiff, []string{WatchCursor}))
	assert.False(t, Matches(cursorDiff, []string{"content"}))
}

func TestStreamManager_DropsForSlowClients(t *testing.T) {
	sm := NewStreamManager(testutils.NewTestLogger(t))
	ch, cancel := sm.Subscribe("d1")

	for i := 0; i < 20; i++ {
		sm.Broadcast("d1", &domain.DraftDiff{DraftID: "d1"})
	}
	assert.Len(t, ch, cap(ch))
	assert.Equal(t, 1, sm.Subscribers("d1"))

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("d1"))
}

func TestServer_Events(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	id := env.create(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/drafts/"+id+"/events?watch=budget", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	readData := func() string {
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				return data
			}
		}
		return ""
	}
	require.Equal(t, "connected", readData())

	env.do(t, http.MethodPatch, "/drafts/"+id+"/content", `{"headline":"ignored"}`)
	env.do(t, http.MethodPatch, "/drafts/"+id+"/budget", `{"dailyBudget":150}`)

	var diff domain.DraftDiff
	require.NoError(t, stdjson.Unmarshal([]byte(readData()), &diff))
	assert.Equal(t, id, diff.DraftID)
	assert.Equal(t, []string{domain.SectionBudget}, diff.Sections)
}
