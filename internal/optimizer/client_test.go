package optimizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openclaw/clawevolve/controller/internal/eval"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

func evolveReq() EvolveRequest {
	return EvolveRequest{
		SeedGenome:       policy.Seed(policy.SeedConfig{}),
		Trajectories:     []telemetry.Trajectory{{ID: "t-1", Success: true}},
		Generations:      6,
		PopulationSize:   18,
		ObjectiveWeights: eval.DefaultWeights(),
		Algorithm:        Algorithm{OuterHoldoutApplied: true},
	}
}

func okResult() EvolveResult {
	return EvolveResult{
		Champion: policy.Genome{ID: "genome_1", ResponseStyle: policy.StyleBalanced},
		ChampionEvaluation: eval.Evaluation{
			Objectives:     map[string]float64{eval.ObjSafety: 0.8, eval.ObjSuccessRate: 0.7},
			AggregateScore: 0.66,
			SampleCount:    1,
		},
	}
}

func TestEvolveRoundTrip(t *testing.T) {
	var gotAuth string
	var gotReq EvolveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/evolve" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(okResult())
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Minute)
	res, err := c.Evolve(context.Background(), evolveReq())
	if err != nil {
		t.Fatalf("Evolve: %v", err)
	}
	if res.Champion.ID != "genome_1" {
		t.Fatalf("unexpected champion id %s", res.Champion.ID)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if !gotReq.Algorithm.OuterHoldoutApplied {
		t.Fatal("outer-holdout flag must be forwarded")
	}
	if gotReq.Generations != 6 || gotReq.PopulationSize != 18 {
		t.Fatalf("run parameters not forwarded: %d/%d", gotReq.Generations, gotReq.PopulationSize)
	}
}

func TestEvolveNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "GEPA optimization failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Minute)
	_, err := c.Evolve(context.Background(), evolveReq())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("error should carry status code, got %v", err)
	}
}

func TestEvolveMissingChampionIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := okResult()
		res.Champion.ID = ""
		json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Minute)
	_, err := c.Evolve(context.Background(), evolveReq())
	if err == nil || !strings.Contains(err.Error(), "missing champion") {
		t.Fatalf("structurally incomplete result must error, got %v", err)
	}
}

func TestEvolveMissingEvaluationIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := okResult()
		res.ChampionEvaluation.Objectives = nil
		json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Minute)
	_, err := c.Evolve(context.Background(), evolveReq())
	if err == nil || !strings.Contains(err.Error(), "missing champion evaluation") {
		t.Fatalf("missing evaluation must error, got %v", err)
	}
}

func TestEvolveNoAuthHeaderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("no auth header expected when token is empty")
		}
		json.NewEncoder(w).Encode(okResult())
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Minute)
	if _, err := c.Evolve(context.Background(), evolveReq()); err != nil {
		t.Fatalf("Evolve: %v", err)
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Minute)
	if err := c.Healthy(context.Background()); err != nil {
		t.Fatalf("Healthy: %v", err)
	}
}
