package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dropship-reconciler/internal/core/config"
	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/core/proxy"
	"dropship-reconciler/internal/features/reconciliation/domain"
	"dropship-reconciler/internal/features/reconciliation/ports"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Selectors of the Cafe24 admin pages.
const (
	selLoginID       = `input[name="loginId"]`
	selLoginPassword = `input[name="loginPasswd"]`
	selLoginButton   = "button.btnStrong.large"
	selKeepPassword  = "#iptBtnEm"
	selOrderNum      = "td.orderNum"
	selCheckbox      = ".chkbox"
	selResultList    = "#searchResultList"
	selOrderBody     = "tbody.center"
	selBulkShip      = "#eShippedEndBtn"
)

// bulkShipDialogs is how many confirmation dialogs follow the bulk ship click.
const bulkShipDialogs = 2

// loginPoll is the interval between dashboard checks after submitting the login form.
const loginPoll = 250 * time.Millisecond

// jsClick clicks through overlays the admin keeps on top of its buttons.
const jsClick = `() => this.click()`

// Cafe24Adapter implements ports.Storefront by driving the Cafe24 admin in Chromium.
type Cafe24Adapter struct {
	config config.StorefrontConfig
	proxy  proxy.Settings
	logger *zap.Logger
}

// NewCafe24Adapter creates a new Cafe24Adapter.
func NewCafe24Adapter(cfg config.StorefrontConfig, proxySettings proxy.Settings) *Cafe24Adapter {
	return &Cafe24Adapter{
		config: cfg,
		proxy:  proxySettings,
		logger: logger.Named("storefront"),
	}
}

// Open launches a browser and returns a session on a blank page.
func (a *Cafe24Adapter) Open(ctx context.Context) (ports.StorefrontSession, error) {
	s := &cafe24Session{config: a.config, logger: a.logger}

	// Chromium cannot authenticate against a proxy from the command line, so
	// credentials go through a local forwarder.
	var proxyAddr string
	if a.proxy.NeedsAuth() {
		fwd, err := proxy.NewForwardingProxy(a.proxy.FullURL())
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy forwarder: %w", err)
		}
		proxyAddr, err = fwd.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start proxy forwarder: %w", err)
		}
		s.forwarder = fwd
	} else if a.proxy.HasProxy() {
		proxyAddr = a.proxy.HostPort()
	}

	a.logger.Debug("Launching browser...",
		zap.Bool("headless", a.config.Headless),
		zap.Bool("proxy_enabled", a.proxy.HasProxy()),
		zap.String("proxy_addr", proxyAddr),
	)

	l := launcher.New().
		Context(ctx).
		Headless(a.config.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage")
	if a.config.BrowserBin != "" {
		l = l.Bin(a.config.BrowserBin)
	}
	if proxyAddr != "" {
		l = l.Proxy(proxyAddr)
	}

	u, err := l.Launch()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	s.launcher = l

	s.browser = rod.New().Context(ctx).ControlURL(u)
	if err := s.browser.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s.page, err = s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return s, nil
}

// cafe24Session is one browser with one admin tab.
type cafe24Session struct {
	config    config.StorefrontConfig
	launcher  *launcher.Launcher
	forwarder *proxy.ForwardingProxy
	browser   *rod.Browser
	page      *rod.Page
	logger    *zap.Logger
}

// Login submits the admin login form and waits until the dashboard is shown.
func (s *cafe24Session) Login(ctx context.Context) error {
	page := s.page.Context(ctx)

	if err := page.Navigate(s.config.LoginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	wait := page.Timeout(s.config.WaitTimeout)

	id, err := wait.Element(selLoginID)
	if err != nil {
		return fmt.Errorf("login form not found: %w", err)
	}
	pw, err := wait.Element(selLoginPassword)
	if err != nil {
		return fmt.Errorf("login form not found: %w", err)
	}
	if err := id.Input(s.config.Username); err != nil {
		return fmt.Errorf("failed to type login id: %w", err)
	}
	if err := pw.Input(s.config.Password); err != nil {
		return fmt.Errorf("failed to type password: %w", err)
	}

	btn, err := wait.Element(selLoginButton)
	if err != nil {
		return fmt.Errorf("login button not found: %w", err)
	}
	if _, err := btn.Eval(jsClick); err != nil {
		// The click may race the navigation it starts; the dashboard check decides.
		s.logger.Debug("Login click returned", zap.Error(err))
	}

	return s.waitForDashboard(ctx, page)
}

// waitForDashboard polls the tab URL, dismissing the password change notice if it shows up.
func (s *cafe24Session) waitForDashboard(ctx context.Context, page *rod.Page) error {
	deadline := time.Now().Add(s.config.WaitTimeout)
	dismissed := false

	for {
		if info, err := page.Info(); err == nil && sameURL(info.URL, s.config.DashboardURL) {
			s.logger.Info("Logged in to storefront admin")
			return nil
		}

		if !dismissed {
			if has, el, err := page.Has(selKeepPassword); err == nil && has {
				if _, err := el.Eval(jsClick); err == nil {
					dismissed = true
					s.logger.Debug("Password change notice dismissed")
				}
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("dashboard not reached within %s", s.config.WaitTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(loginPoll):
		}
	}
}

// ScrapeInTransit lists the orders on the in-transit page. An order list
// that does not render within the wait timeout is treated as empty.
func (s *cafe24Session) ScrapeInTransit(ctx context.Context) (*domain.ShippingPage, error) {
	page := s.page.Context(ctx)

	if err := page.Navigate(s.config.ShippingURL); err != nil {
		return nil, fmt.Errorf("failed to open shipping page: %w", err)
	}
	wait := page.Timeout(s.config.WaitTimeout)

	for _, sel := range []string{selOrderNum, selCheckbox} {
		if _, err := wait.Element(sel); err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				s.logger.Info("No in-transit orders listed")
				return &domain.ShippingPage{}, nil
			}
			return nil, fmt.Errorf("waiting for %s: %w", sel, err)
		}
	}

	list, err := wait.Element(selResultList)
	if err != nil {
		return nil, fmt.Errorf("order list not found: %w", err)
	}
	bodies, err := list.Elements(selOrderBody)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := &domain.ShippingPage{Orders: make([]domain.ScrapedOrder, 0, len(bodies))}
	for _, body := range bodies {
		order, ok := s.scrapeOrder(body)
		if ok {
			result.Orders = append(result.Orders, order)
		}
	}

	if has, btn, err := page.Has(selBulkShip); err == nil && has {
		result.BulkShip = &bulkShip{page: s.page, button: btn, timeout: s.config.WaitTimeout, logger: s.logger}
	} else {
		s.logger.Warn("Bulk ship button not found")
	}

	s.logger.Info("Shipping page scraped", zap.Int("rows", len(bodies)), zap.Int("orders", len(result.Orders)))
	return result, nil
}

func (s *cafe24Session) scrapeOrder(body *rod.Element) (domain.ScrapedOrder, bool) {
	has, numEl, err := body.Has(selOrderNum)
	if err != nil || !has {
		return domain.ScrapedOrder{}, false
	}

	text, err := numEl.Text()
	if err != nil {
		s.logger.Warn("Failed to read order number", zap.Error(err))
		return domain.ScrapedOrder{}, false
	}
	num := parseOrderNum(text)
	if num == "" {
		s.logger.Warn("Unrecognized order number cell", zap.String("text", text))
		return domain.ScrapedOrder{}, false
	}

	order := domain.ScrapedOrder{MarketOrderNum: num}
	if has, chk, err := body.Has(selCheckbox); err == nil && has {
		order.Marker = &checkbox{el: chk, timeout: s.config.WaitTimeout}
	} else {
		s.logger.Warn("Order has no checkbox", zap.String("market_order_num", num))
	}
	return order, true
}

// Close shuts the browser and the proxy forwarder down.
func (s *cafe24Session) Close() error {
	var errs []error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	if s.forwarder != nil {
		if err := s.forwarder.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop proxy forwarder: %w", err))
		}
	}
	return errors.Join(errs...)
}

// parseOrderNum extracts the market order number from the order cell. The
// cell text is the order date on the first line, then the number followed
// by marketplace labels.
func parseOrderNum(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return ""
	}
	fields := strings.Fields(lines[1])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func sameURL(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}

// checkbox is the per-order selection box.
type checkbox struct {
	el      *rod.Element
	timeout time.Duration
}

// Select ticks the box. A box that stays covered fails after the wait
// timeout instead of blocking the run.
func (c *checkbox) Select(ctx context.Context) error {
	el := c.el.Context(ctx)
	if c.timeout > 0 {
		el = el.Timeout(c.timeout)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click order checkbox: %w", err)
	}
	return nil
}

// bulkShip is the "mark shipped" button and its chain of confirmation dialogs.
type bulkShip struct {
	page    *rod.Page
	button  *rod.Element
	timeout time.Duration
	logger  *zap.Logger

	active    *rod.Page
	remaining int
	wait      func() *proto.PageJavascriptDialogOpening
	handle    func(*proto.PageHandleJavaScriptDialog) error
}

// Activate clicks the button. The click blocks inside the page until the
// dialogs are answered, so it runs in the background.
func (b *bulkShip) Activate(ctx context.Context) error {
	b.active = b.page.Context(ctx)
	b.remaining = bulkShipDialogs
	b.arm()

	btn := b.button.Context(ctx)
	go func() {
		if _, err := btn.Eval(jsClick); err != nil {
			b.logger.Debug("Bulk ship click returned", zap.Error(err))
		}
	}()
	return nil
}

// Confirm waits for the next dialog and accepts it.
func (b *bulkShip) Confirm(ctx context.Context) error {
	if b.wait == nil {
		return errors.New("no confirmation dialog expected")
	}
	wait, handle := b.wait, b.handle
	b.wait, b.handle = nil, nil

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	opened := make(chan *proto.PageJavascriptDialogOpening, 1)
	go func() { opened <- wait() }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for confirmation dialog: %w", ctx.Err())
	case dialog := <-opened:
		b.arm()
		if err := handle(&proto.PageHandleJavaScriptDialog{Accept: true}); err != nil {
			return fmt.Errorf("failed to accept dialog: %w", err)
		}
		if dialog != nil {
			b.logger.Info("Confirmation dialog accepted", zap.String("message", dialog.Message))
		}
		return nil
	}
}

// arm subscribes to the next dialog before the previous one is answered.
func (b *bulkShip) arm() {
	if b.remaining <= 0 {
		return
	}
	b.remaining--
	b.wait, b.handle = b.active.HandleDialog()
}
