package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/talkincode/storebuilder/internal/annotation"
	"github.com/talkincode/storebuilder/internal/cart"
	"github.com/talkincode/storebuilder/internal/upload"
	"github.com/talkincode/storebuilder/internal/wizard"
)

// Page is a preview page of the store being built.
type Page string

const (
	PageHome     Page = "home"
	PageProducts Page = "products"
	PageProduct  Page = "product"
	PageAbout    Page = "about"
	PageContact  Page = "contact"
)

var Pages = []Page{PageHome, PageProducts, PageProduct, PageAbout, PageContact}

// ParsePage validates a page name.
func ParsePage(s string) (Page, error) {
	for _, p := range Pages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownPage, s)
}

// Device is a preview viewport.
type Device string

const (
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
	DeviceDesktop Device = "desktop"
)

// Viewport is a device frame in CSS pixels. Width 0 means full width.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

var viewports = map[Device]Viewport{
	DeviceMobile:  {Width: 320, Height: 568},
	DeviceTablet:  {Width: 768, Height: 1024},
	DeviceDesktop: {Width: 0, Height: 600},
}

// Viewport returns the frame of d.
func (d Device) Viewport() Viewport {
	return viewports[d]
}

// ParseDevice validates a device name.
func ParseDevice(s string) (Device, error) {
	d := Device(s)
	if _, ok := viewports[d]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownDevice, s)
	}
	return d, nil
}

var (
	ErrUnknownPage   = errors.New("session: unknown page")
	ErrUnknownDevice = errors.New("session: unknown device")
	ErrNoProduct     = errors.New("session: no product selected")
)

// Session is the isolated state of one browser tab. Every field is guarded
// by the session mutex; handlers go through Do.
type Session struct {
	ID         string
	Onboarding *wizard.Run
	Board      *annotation.Board
	Milestones *annotation.Tracker
	Cart       *cart.Cart
	Upload     *upload.Form

	mu       sync.Mutex
	page     Page
	device   Device
	search   string
	product  int64
	created  time.Time
	lastSeen time.Time
}

// Do runs fn with the session locked and refreshes its last-seen time.
func (s *Session) Do(fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return fn(s)
}

func (s *Session) Page() Page     { return s.page }
func (s *Session) Device() Device { return s.device }
func (s *Session) Search() string { return s.search }

// Navigate switches the preview page; the annotation board follows.
func (s *Session) Navigate(p Page) {
	s.page = p
	s.Board.SetPage(string(p))
}

// SetDevice switches the preview viewport.
func (s *Session) SetDevice(d Device) {
	s.device = d
}

// SetSearch sets the catalog search term.
func (s *Session) SetSearch(term string) {
	s.search = term
}

// SelectProduct opens the product detail page for id.
func (s *Session) SelectProduct(id int64) {
	s.product = id
	s.Navigate(PageProduct)
}

// Product returns the selected product id.
func (s *Session) Product() (int64, error) {
	if s.product == 0 {
		return 0, ErrNoProduct
	}
	return s.product, nil
}

// LastSeen is the time of the latest Do call.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Preview is the serializable preview state.
type Preview struct {
	Page     Page     `json:"page"`
	Device   Device   `json:"device"`
	Viewport Viewport `json:"viewport"`
	Search   string   `json:"search"`
	Product  int64    `json:"product,omitempty"`
}

// Preview snapshots the preview state.
func (s *Session) Preview() Preview {
	return Preview{
		Page:     s.page,
		Device:   s.device,
		Viewport: s.device.Viewport(),
		Search:   s.search,
		Product:  s.product,
	}
}

// Created is the time the session was first seen.
func (s *Session) Created() time.Time {
	return s.created
}
