package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dropship-reconciler/internal/core/config"
	"dropship-reconciler/internal/core/proxy"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginHTML = `<html><body>
<input name="loginId"><input name="loginPasswd" type="password">
<button class="btnStrong large" onclick="location.href='/dashboard'">login</button>
</body></html>`

const shippingHTML = `<html><body>
<table id="searchResultList">
<tbody class="center"><tr><td><input type="checkbox" class="chkbox" id="c1"></td><td class="orderNum">2025-01-05 20:14:18<br>20250105-0000216-1 스마트스토어</td></tr></tbody>
<tbody class="center"><tr><td><input type="checkbox" class="chkbox" id="c2"></td><td class="orderNum">2025-01-05 20:10:25<br>20250105-0000201-1</td></tr></tbody>
<tbody class="center"><tr><td colspan="2">memo row</td></tr></tbody>
</table>
<button id="eShippedEndBtn" onclick="if (confirm('ship?')) { if (confirm('really?')) { document.title = 'shipped:' + document.querySelectorAll('.chkbox:checked').length } }">ship</button>
</body></html>`

const coveredShippingHTML = `<html><body>
<table id="searchResultList">
<tbody class="center"><tr><td><input type="checkbox" class="chkbox" id="c1"></td><td class="orderNum">2025-01-05 20:14:18<br>20250105-0000216-1</td></tr></tbody>
</table>
<div style="position:fixed;top:0;left:0;width:100%;height:100%;background:#fff;z-index:1000">notice</div>
</body></html>`

const emptyShippingHTML = `<html><body><table id="searchResultList"><tbody class="empty"><tr><td colspan="9">none</td></tr></tbody></table></body></html>`

// TestCafe24Session_EndToEnd drives a fake admin in a real browser.
func TestCafe24Session_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no local Chromium found")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(loginHTML)) })
	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html><body>dashboard</body></html>")) })
	mux.HandleFunc("/shipping", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(shippingHTML)) })
	mux.HandleFunc("/covered", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(coveredShippingHTML)) })
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(emptyShippingHTML)) })
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.StorefrontConfig{
		Username:     "admin",
		Password:     "secret",
		LoginURL:     server.URL + "/login",
		DashboardURL: server.URL + "/dashboard",
		ShippingURL:  server.URL + "/shipping",
		Headless:     true,
		WaitTimeout:  5 * time.Second,
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	session, err := NewCafe24Adapter(cfg, proxy.Settings{}).Open(ctx)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Login(ctx))

	page, err := session.ScrapeInTransit(ctx)
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, "20250105-0000216-1", page.Orders[0].MarketOrderNum)
	assert.Equal(t, "20250105-0000201-1", page.Orders[1].MarketOrderNum)
	require.NotNil(t, page.BulkShip)

	require.NoError(t, page.Orders[0].Marker.Select(ctx))
	require.NoError(t, page.BulkShip.Activate(ctx))
	require.NoError(t, page.BulkShip.Confirm(ctx))
	require.NoError(t, page.BulkShip.Confirm(ctx))

	rodPage := session.(*cafe24Session).page
	assert.Eventually(t, func() bool {
		info, err := rodPage.Info()
		return err == nil && info.Title == "shipped:1"
	}, 5*time.Second, 50*time.Millisecond)

	t.Run("CoveredCheckbox", func(t *testing.T) {
		s := session.(*cafe24Session)
		s.config.ShippingURL = server.URL + "/covered"
		s.config.WaitTimeout = time.Second

		covered, err := s.ScrapeInTransit(ctx)
		require.NoError(t, err)
		require.Len(t, covered.Orders, 1)
		require.NotNil(t, covered.Orders[0].Marker)

		start := time.Now()
		err = covered.Orders[0].Marker.Select(ctx)
		require.Error(t, err)
		assert.Less(t, time.Since(start), 10*time.Second)
		assert.NoError(t, ctx.Err(), "run context must still be alive")
	})

	t.Run("EmptyList", func(t *testing.T) {
		s := session.(*cafe24Session)
		s.config.ShippingURL = server.URL + "/empty"
		s.config.WaitTimeout = 500 * time.Millisecond

		empty, err := s.ScrapeInTransit(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty.Orders)
		assert.Nil(t, empty.BulkShip)
	})
}
