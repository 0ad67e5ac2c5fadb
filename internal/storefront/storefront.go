// internal/storefront/storefront.go
package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/returns"
	"github.com/your-org/storefront/internal/domain/session"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/infrastructure/storage"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/metrics"
)

var (
	// ErrNotAuthenticated is returned by operations that need a signed-in user
	ErrNotAuthenticated = errors.New("please sign in to continue")
	// ErrEmptyCart is returned when checking out an empty cart
	ErrEmptyCart = errors.New("your cart is empty")
	// ErrForbidden is returned when a non-admin calls an admin operation
	ErrForbidden = errors.New("you do not have permission to do this")
	// ErrUnavailable is returned when adding a product that is not for sale
	ErrUnavailable = errors.New("this product is not available")
)

// Deps are shared by every owner's storefront
type Deps struct {
	Backend  *api.Backend
	Storage  storage.Store
	Secret   string
	Log      logrus.FieldLogger
	Metrics  *metrics.Metrics
	Notifier Notifier
}

// Storefront is the client state of one owner: cart, session and API client
type Storefront struct {
	ID      string
	Cart    *cart.Store
	Session *session.Service
	API     *api.Client

	notifier Notifier
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

// New builds the storefront for owner. Its state lives under the owner's
// namespace in deps.Storage.
func New(owner string, deps Deps) *Storefront {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("owner", owner)

	ns := storage.NewNamespaced(deps.Storage, owner)
	var sessionStore storage.Store = ns
	if deps.Secret != "" {
		sessionStore = storage.NewSealed(ns, deps.Secret)
	}

	creds := auth.NewCredentials()
	client := deps.Backend.Client(creds)

	return &Storefront{
		ID:       owner,
		Cart:     cart.NewStore(ns, log),
		Session:  session.NewService(client, creds, sessionStore, log),
		API:      client,
		notifier: fanout{next: deps.Notifier},
		log:      log,
		metrics:  deps.Metrics,
	}
}

// Load rehydrates the cart and the session
func (s *Storefront) Load(ctx context.Context) error {
	return errors.Join(
		s.Cart.Rehydrate(ctx),
		s.tolerate(s.Session.Rehydrate(ctx), "session"),
	)
}

// tolerate logs persistence failures and lets everything else through
func (s *Storefront) tolerate(err error, store string) error {
	var cartErr *cart.PersistError
	var sessionErr *session.PersistError
	if errors.As(err, &cartErr) || errors.As(err, &sessionErr) {
		s.log.WithError(err).WithField("store", store).Error("Failed to persist client state")
		s.metrics.IncPersistFailure(store)
		return nil
	}
	return err
}

func (s *Storefront) succeed(ctx context.Context, message string) {
	s.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: message})
}

// fail reports err to the visitor and returns it unchanged
func (s *Storefront) fail(ctx context.Context, fallback string, err error) error {
	s.notifier.Notify(ctx, Notification{Level: LevelError, Message: describe(fallback, err)})
	return err
}

func describe(fallback string, err error) string {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Kind != api.KindNetwork:
		return fmt.Sprintf("%s: %s", fallback, apiErr.Message)
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrUnavailable):
		return err.Error()
	default:
		return fallback
	}
}

func (s *Storefront) requireUser() (*user.User, error) {
	u := s.Session.User()
	if u == nil || !s.Session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}

// RequireAdmin returns the signed-in admin or an error
func (s *Storefront) RequireAdmin() (*user.User, error) {
	u, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, ErrForbidden
	}
	return u, nil
}

// Catalog

// Products lists the catalog
func (s *Storefront) Products(ctx context.Context, f product.Filter) (*api.Page[product.Product], error) {
	return s.API.ListProducts(ctx, f)
}

// Product fetches one catalog entry
func (s *Storefront) Product(ctx context.Context, id string) (*product.Product, error) {
	return s.API.GetProduct(ctx, id)
}

// Cart

// AddToCart looks up the product and adds quantity of it
func (s *Storefront) AddToCart(ctx context.Context, productID string, quantity int) (cart.Snapshot, error) {
	p, err := s.API.GetProduct(ctx, productID)
	if err != nil {
		return s.Cart.Snapshot(), s.fail(ctx, "Could not add the product to your cart", err)
	}
	if !p.IsPurchasable() {
		return s.Cart.Snapshot(), s.fail(ctx, "Could not add the product to your cart", ErrUnavailable)
	}
	if err := s.tolerate(s.Cart.AddItem(ctx, *p, quantity), "cart"); err != nil {
		return s.Cart.Snapshot(), err
	}
	s.succeed(ctx, fmt.Sprintf("%s was added to your cart", p.Name))
	return s.Cart.Snapshot(), nil
}

// SetQuantity sets a line's quantity; zero or less removes it
func (s *Storefront) SetQuantity(ctx context.Context, productID string, quantity int) (cart.Snapshot, error) {
	err := s.tolerate(s.Cart.UpdateQuantity(ctx, productID, quantity), "cart")
	return s.Cart.Snapshot(), err
}

// RemoveFromCart drops a line
func (s *Storefront) RemoveFromCart(ctx context.Context, productID string) (cart.Snapshot, error) {
	err := s.tolerate(s.Cart.RemoveItem(ctx, productID), "cart")
	return s.Cart.Snapshot(), err
}

// ClearCart empties the cart
func (s *Storefront) ClearCart(ctx context.Context) (cart.Snapshot, error) {
	err := s.tolerate(s.Cart.Clear(ctx), "cart")
	return s.Cart.Snapshot(), err
}

// CheckCart compares the cart with the live catalog. Lines are never changed.
func (s *Storefront) CheckCart(ctx context.Context) ([]cart.Issue, error) {
	lines := s.Cart.Items()
	live := make(map[string]*product.Product, len(lines))
	for _, l := range lines {
		p, err := s.API.GetProduct(ctx, l.ProductID)
		switch {
		case api.IsNotFound(err):
			live[l.ProductID] = nil
		case err != nil:
			return nil, s.fail(ctx, "Could not check your cart", err)
		default:
			live[l.ProductID] = p
		}
	}

	issues := cart.PriceDrift(lines, live)
	for _, issue := range issues {
		s.notifier.Notify(ctx, Notification{Level: LevelWarning, Message: issue.Message})
	}
	return issues, nil
}

// Session

// Login signs the owner in
func (s *Storefront) Login(ctx context.Context, req user.LoginRequest) (*user.User, error) {
	u, err := s.Session.Login(ctx, req)
	if err = s.tolerate(err, "session"); err != nil {
		return nil, s.fail(ctx, "Sign in failed", err)
	}
	s.succeed(ctx, "Signed in successfully")
	return u, nil
}

// Register creates an account and signs the owner in
func (s *Storefront) Register(ctx context.Context, req user.RegisterRequest) (*user.User, error) {
	u, err := s.Session.Register(ctx, req)
	if err = s.tolerate(err, "session"); err != nil {
		return nil, s.fail(ctx, "Could not create your account", err)
	}
	s.succeed(ctx, "Your account was created")
	return u, nil
}

// Logout signs the owner out
func (s *Storefront) Logout(ctx context.Context) error {
	if err := s.tolerate(s.Session.Logout(ctx), "session"); err != nil {
		return err
	}
	s.succeed(ctx, "Signed out")
	return nil
}

// ChangePassword changes the signed-in user's password
func (s *Storefront) ChangePassword(ctx context.Context, req user.ChangePasswordRequest) (string, error) {
	if _, err := s.requireUser(); err != nil {
		return "", s.fail(ctx, "Could not change your password", err)
	}
	msg, err := s.API.ChangePassword(ctx, req)
	if err != nil {
		return "", s.fail(ctx, "Could not change your password", err)
	}
	if msg == "" {
		msg = "Your password was changed"
	}
	s.succeed(ctx, msg)
	return msg, nil
}

// Profile refreshes the signed-in user's record from the backend
func (s *Storefront) Profile(ctx context.Context) (*user.User, error) {
	current, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	u, err := s.API.GetUser(ctx, current.ID)
	if err != nil {
		return nil, s.fail(ctx, "Could not load your profile", err)
	}
	if err := s.tolerate(s.Session.UpdateUser(ctx, u), "session"); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile patches the signed-in user's record
func (s *Storefront) UpdateProfile(ctx context.Context, req user.UpdateRequest) (*user.User, error) {
	current, err := s.requireUser()
	if err != nil {
		return nil, s.fail(ctx, "Could not update your profile", err)
	}
	u, err := s.API.UpdateUser(ctx, current.ID, req)
	if err != nil {
		return nil, s.fail(ctx, "Could not update your profile", err)
	}
	if err := s.tolerate(s.Session.UpdateUser(ctx, u), "session"); err != nil {
		return nil, err
	}
	s.succeed(ctx, "Your profile was updated")
	return u, nil
}

// Orders

// PlaceOrder turns the cart into an order. The cart is cleared only after the
// backend accepted the order.
func (s *Storefront) PlaceOrder(ctx context.Context, address order.ShippingAddress) (*order.Order, error) {
	if _, err := s.requireUser(); err != nil {
		return nil, s.fail(ctx, "Could not place your order", err)
	}
	snapshot := s.Cart.Snapshot()
	if len(snapshot.Items) == 0 {
		return nil, s.fail(ctx, "Could not place your order", ErrEmptyCart)
	}

	req := order.CreateRequest{
		Items:           make([]order.LineRequest, 0, len(snapshot.Items)),
		ShippingAddress: address,
		TotalAmount:     snapshot.TotalAmount,
	}
	for _, l := range snapshot.Items {
		req.Items = append(req.Items, order.LineRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	created, err := s.API.CreateOrder(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, "Could not place your order", err)
	}

	if err := s.tolerate(s.Cart.Clear(ctx), "cart"); err != nil {
		return created, err
	}
	s.succeed(ctx, "Your order was placed successfully")
	return created, nil
}

// MyOrders lists the signed-in user's orders
func (s *Storefront) MyOrders(ctx context.Context, f order.Filter) (*api.Page[order.Order], error) {
	if _, err := s.requireUser(); err != nil {
		return nil, err
	}
	page, err := s.API.ListMyOrders(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "Could not load your orders", err)
	}
	return page, nil
}

// Order fetches one of the signed-in user's orders
func (s *Storefront) Order(ctx context.Context, id string) (*order.Order, error) {
	if _, err := s.requireUser(); err != nil {
		return nil, err
	}
	o, err := s.API.GetOrder(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "Could not load the order", err)
	}
	return o, nil
}

// Returns

// RequestReturn files a return for an order
func (s *Storefront) RequestReturn(ctx context.Context, req returns.CreateRequest) (*returns.Return, error) {
	if _, err := s.requireUser(); err != nil {
		return nil, s.fail(ctx, "Could not submit your return request", err)
	}
	r, err := s.API.CreateReturn(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, "Could not submit your return request", err)
	}
	s.succeed(ctx, "Your return request was submitted")
	return r, nil
}

// MyReturns lists the signed-in user's return requests
func (s *Storefront) MyReturns(ctx context.Context, f returns.Filter) (*api.Page[returns.Return], error) {
	if _, err := s.requireUser(); err != nil {
		return nil, err
	}
	page, err := s.API.ListReturns(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "Could not load your return requests", err)
	}
	return page, nil
}

// Return fetches one return request
func (s *Storefront) Return(ctx context.Context, id string) (*returns.Return, error) {
	if _, err := s.requireUser(); err != nil {
		return nil, err
	}
	r, err := s.API.GetReturn(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "Could not load the return request", err)
	}
	return r, nil
}
