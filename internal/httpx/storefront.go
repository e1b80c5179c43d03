package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/currency"
	"github.com/ariefcatur/go-storefront/internal/inventory"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type StorefrontHandler struct {
	Catalog  *catalog.Catalog
	Stock    *inventory.Service
	Cart     *cart.Store
	Checkout *orders.Checkout
	Orders   *orders.Recorder
	Currency *currency.Store
	Log      *zap.Logger
}

func (h *StorefrontHandler) Register(r *chi.Mux) {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Get("/cart", h.getCart)
	r.Get("/cart/count", h.cartCount)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items", h.setQuantity)
	r.Delete("/cart/items/{productID}/{size}", h.removeItem)

	r.Post("/checkout", h.startCheckout)
	r.Get("/checkout/{id}", h.getCheckout)
	r.Put("/checkout/{id}/details", h.submitDetails)
	r.Put("/checkout/{id}/shipping", h.selectShipping)
	r.Post("/checkout/{id}/back", h.checkoutBack)
	r.Post("/checkout/{id}/payment", h.completeCheckout)

	r.Get("/orders", h.listOrders)

	r.Get("/currency", h.getCurrency)
	r.Put("/currency", h.setCurrency)
}

type sizeView struct {
	Size      catalog.Size `json:"size"`
	Available int          `json:"available"`
	Remaining int          `json:"remaining"`
}

type productView struct {
	catalog.Product
	Sizes []sizeView `json:"sizes"`
}

type cartView struct {
	Items      cart.Lines      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Currency   currency.Code   `json:"currency"`
	Converted  decimal.Decimal `json:"converted_subtotal"`
}

type addItemReq struct {
	ProductID string       `json:"product_id"`
	Size      catalog.Size `json:"size"`
}

type setQuantityReq struct {
	ProductID string       `json:"product_id"`
	Size      catalog.Size `json:"size"`
	Quantity  int          `json:"quantity"`
}

type shippingReq struct {
	MethodID string `json:"method_id"`
}

type backReq struct {
	Step orders.Step `json:"step"`
}

type completeResp struct {
	Session orders.Session `json:"session"`
	Order   orders.Order   `json:"order"`
}

type currencyReq struct {
	Currency currency.Code `json:"currency"`
}

type currencyResp struct {
	Currency  currency.Code   `json:"currency"`
	Supported []currency.Info `json:"supported"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid json")
		return false
	}
	return true
}

func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

// view joins catalog data with live availability and what this cart holds.
func (h *StorefrontHandler) view(p catalog.Product, ledger inventory.Ledger, lines cart.Lines) productView {
	v := productView{Product: p, Sizes: make([]sizeView, 0, len(p.Sizes))}
	for _, s := range p.Sizes {
		available := ledger.Available(p.ID, s.Size)
		v.Sizes = append(v.Sizes, sizeView{
			Size:      s.Size,
			Available: available,
			Remaining: max(0, available-lines.Quantity(p.ID, s.Size)),
		})
	}
	return v
}

func (h *StorefrontHandler) liveState(ctx context.Context) (inventory.Ledger, cart.Lines, error) {
	ledger, err := h.Stock.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	lines, err := h.Cart.Lines(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ledger, lines, nil
}

func (h *StorefrontHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	var (
		ps  []catalog.Product
		err error
	)
	if c := r.URL.Query().Get("category"); c != "" {
		ps, err = h.Catalog.ByCategory(ctx, catalog.Category(c))
	} else {
		ps, err = h.Catalog.Products(ctx)
	}
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ledger, lines, err := h.liveState(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, h.view(p, ledger, lines))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *StorefrontHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	p, err := h.Catalog.Product(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ledger, lines, err := h.liveState(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(p, ledger, lines))
}

func (h *StorefrontHandler) writeCart(ctx context.Context, w http.ResponseWriter, lines cart.Lines) {
	code, err := h.Currency.Selected(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	subtotal, _, _ := orders.ComputeTotals(lines, orders.ShippingStandard)
	converted, err := currency.Convert(subtotal, code)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView{
		Items:      lines,
		TotalItems: lines.TotalItems(),
		Subtotal:   subtotal,
		Currency:   code,
		Converted:  converted,
	})
}

func (h *StorefrontHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	lines, err := h.Cart.Lines(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.writeCart(ctx, w, lines)
}

func (h *StorefrontHandler) cartCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	n, err := h.Cart.TotalItemCount(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *StorefrontHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == "" || !req.Size.Valid() {
		badRequest(w, "product_id and a valid size are required")
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	p, err := h.Catalog.Product(ctx, req.ProductID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	lines, err := h.Cart.Add(ctx, p, req.Size)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.writeCart(ctx, w, lines)
}

func (h *StorefrontHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityReq
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == "" || !req.Size.Valid() {
		badRequest(w, "product_id and a valid size are required")
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	lines, err := h.Cart.SetQuantity(ctx, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.writeCart(ctx, w, lines)
}

func (h *StorefrontHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	lines, err := h.Cart.Remove(ctx, chi.URLParam(r, "productID"), catalog.Size(chi.URLParam(r, "size")))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.writeCart(ctx, w, lines)
}

func (h *StorefrontHandler) startCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	s, err := h.Checkout.Start(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *StorefrontHandler) getCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	s, err := h.Checkout.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *StorefrontHandler) submitDetails(w http.ResponseWriter, r *http.Request) {
	var d orders.Details
	if !decode(w, r, &d) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	s, err := h.Checkout.SubmitDetails(ctx, chi.URLParam(r, "id"), d)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *StorefrontHandler) selectShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingReq
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	s, err := h.Checkout.SelectShipping(ctx, chi.URLParam(r, "id"), req.MethodID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *StorefrontHandler) checkoutBack(w http.ResponseWriter, r *http.Request) {
	var req backReq
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	s, err := h.Checkout.Back(ctx, chi.URLParam(r, "id"), req.Step)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *StorefrontHandler) completeCheckout(w http.ResponseWriter, r *http.Request) {
	var p orders.Payment
	if !decode(w, r, &p) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	s, o, err := h.Checkout.Complete(ctx, chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, completeResp{Session: s, Order: o})
}

func (h *StorefrontHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	list, err := h.Orders.List(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *StorefrontHandler) getCurrency(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	c, err := h.Currency.Selected(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, currencyResp{Currency: c, Supported: currency.Supported()})
}

func (h *StorefrontHandler) setCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyReq
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Currency.Select(ctx, req.Currency); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, currencyResp{Currency: req.Currency, Supported: currency.Supported()})
}
