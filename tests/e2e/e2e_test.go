// e2e_test.go
//
// A recipe service with shared and private reference catalogs
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of recipedb.
// recipedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// recipedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with recipedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2EWithFullStack tests the entire service stack
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	tc, err := helpers.CreateAllTestContainers(t)
	require.NoError(t, err, "failed to start test containers")
	defer tc.Terminate(t)

	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, tc.BaseURL)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, tc.BaseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, tc.BaseURL)
	})

	t.Run("GuestIsRejected", func(t *testing.T) {
		testGuestIsRejected(t, tc.BaseURL)
	})

	t.Run("RegisterAndCreateRecipe", func(t *testing.T) {
		testRegisterAndCreateRecipe(t, tc.BaseURL)
	})
}

func testHealthCheck(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var result services.HealthCheckResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", result.Status, "%+v", result)

	t.Logf("Health check passed: status=%s, database=%s, storage=%s",
		result.Status, result.Database, result.Storage)
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `service="recipedb"`)
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func testGuestIsRejected(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/api/recipes")
	require.NoError(t, err)
	helpers.AssertStatus(t, resp, http.StatusUnauthorized)

	body := helpers.ParseError(t, resp)
	assert.Equal(t, "Authentication required", body.Message)
}

func postJSON(t *testing.T, client *http.Client, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func testRegisterAndCreateRecipe(t *testing.T, baseURL string) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	email := fmt.Sprintf("e2e-%s@example.com", uuid.NewString()[:8])
	resp := postJSON(t, client, baseURL+"/api/register", map[string]string{
		"name":                  "E2E Cook",
		"email":                 email,
		"password":              "e2e-password",
		"password_confirmation": "e2e-password",
	})
	helpers.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = postJSON(t, client, baseURL+"/api/cuisines", map[string]string{"name": "E2E " + uuid.NewString()[:8]})
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var cuisine struct {
		Cuisine struct {
			ID uint64 `json:"id"`
		} `json:"cuisine"`
	}
	helpers.ParseJSON(t, resp, &cuisine)

	resp = postJSON(t, client, baseURL+"/api/ingredients", map[string]string{"name": "E2E " + uuid.NewString()[:8]})
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var ingredient struct {
		Ingredient struct {
			ID uint64 `json:"id"`
		} `json:"ingredient"`
	}
	helpers.ParseJSON(t, resp, &ingredient)

	resp = postJSON(t, client, baseURL+"/api/recipes", map[string]interface{}{
		"title":      "Container Cake",
		"cuisine_id": cuisine.Cuisine.ID,
		"steps": []map[string]interface{}{{
			"step_number": 1,
			"description": "Bake",
			"ingredients": []map[string]interface{}{{"ingredient_id": ingredient.Ingredient.ID, "amount": 500, "unit": "g"}},
		}},
	})
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var created struct {
		Recipe services.RecipeResult `json:"recipe"`
	}
	helpers.ParseJSON(t, resp, &created)
	require.Len(t, created.Recipe.Steps, 1)
	assert.Equal(t, "500", created.Recipe.Steps[0].Ingredients[0].Pivot.Amount.String())

	resp, err = client.Get(fmt.Sprintf("%s/api/recipes/%d", baseURL, created.Recipe.ID))
	require.NoError(t, err)
	helpers.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}
