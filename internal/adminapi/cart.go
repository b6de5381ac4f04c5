package adminapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/storebuilder/internal/cart"
	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/webserver"
)

type cartItemPayload struct {
	ProductID int64 `json:"product_id,string"`
}

type quantityPayload struct {
	Quantity *int `json:"quantity"`
}

func registerCartRoutes() {
	webserver.ApiGET("/cart", getCart)
	webserver.ApiPOST("/cart/items", addCartItem)
	webserver.ApiPUT("/cart/items/:id", updateCartItem)
	webserver.ApiDELETE("/cart/items/:id", removeCartItem)
}

func getCart(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		return ok(c, s.Cart.Summary())
	})
}

func addCartItem(c echo.Context) error {
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", err.Error())
	}
	p, err := loadCatalogProduct(c, payload.ProductID)
	if errors.Is(err, errProductNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		s.Cart.Add(cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image})
		publish(c, events.TopicCartChanged, p.Name)
		return ok(c, s.Cart.Summary())
	})
}

func updateCartItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload quantityPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity", err.Error())
	}
	if payload.Quantity == nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Quantity is required", nil)
	}
	return withSession(c, func(s *session.Session) error {
		if err := s.Cart.SetQuantity(id, *payload.Quantity); err != nil {
			return cartError(c, err)
		}
		publish(c, events.TopicCartChanged, strconv.FormatInt(id, 10))
		return ok(c, s.Cart.Summary())
	})
}

func removeCartItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	return withSession(c, func(s *session.Session) error {
		if err := s.Cart.Remove(id); err != nil {
			return cartError(c, err)
		}
		publish(c, events.TopicCartChanged, strconv.FormatInt(id, 10))
		return ok(c, s.Cart.Summary())
	})
}

func cartError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product is not in the cart", nil)
	case errors.Is(err, cart.ErrInvalidQuantity):
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must not be negative", nil)
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}
