package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/api/middleware"
	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

// CartSessionHeader identifies a guest cart session. Authenticated users'
// carts are keyed by their user id instead, so a login carries the cart
// across devices.
const CartSessionHeader = "X-Cart-Session"

type cartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	TotalItems int               `json:"total_items"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{
		Items:      items,
		TotalPrice: cart.TotalPrice(),
		TotalItems: cart.TotalItems(),
	}
}

// cartSessionID resolves the cart key for the request: the user id when
// authenticated, otherwise the guest session header.
func cartSessionID(c *gin.Context) (string, error) {
	if user, ok := middleware.GetUserFromContext(c); ok {
		return "user:" + user.ID.String(), nil
	}
	if sid := c.GetHeader(CartSessionHeader); sid != "" {
		return "guest:" + sid, nil
	}
	return "", &errors.ErrValidation{Message: "missing " + CartSessionHeader + " header"}
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(carts repository.CartStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := cartSessionID(c)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		cart, err := carts.Get(c.Request.Context(), sid)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// HandleAddCartItem handles POST /v1/cart/items. The unit price is
// snapshotted from the catalog, not accepted from the client.
func HandleAddCartItem(repos *repository.Repositories, carts repository.CartStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := cartSessionID(c)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			respondError(c, logger, &errors.ErrValidation{Message: "invalid product id"})
			return
		}

		product, err := repos.Product.GetByID(c.Request.Context(), productID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if !product.IsActive {
			respondError(c, logger, &errors.ErrNotFound{Resource: "product", ID: req.ProductID})
			return
		}

		cart, err := carts.Get(c.Request.Context(), sid)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		cart.AddItem(domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  req.Quantity,
			ImageURL:  product.ImageURL,
			Color:     req.Color,
			Size:      req.Size,
		})

		if err := carts.Set(c.Request.Context(), cart); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateCartItem handles PATCH /v1/cart/items/:id; quantity <= 0
// removes the line.
func HandleUpdateCartItem(carts repository.CartStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := cartSessionID(c)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		cart, err := carts.Get(c.Request.Context(), sid)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		if !cart.UpdateQuantity(c.Param("id"), req.Quantity) {
			respondError(c, logger, &errors.ErrNotFound{Resource: "cart item", ID: c.Param("id")})
			return
		}

		if err := carts.Set(c.Request.Context(), cart); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

// HandleRemoveCartItem handles DELETE /v1/cart/items/:id
func HandleRemoveCartItem(carts repository.CartStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := cartSessionID(c)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		cart, err := carts.Get(c.Request.Context(), sid)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		cart.RemoveItem(c.Param("id"))

		if err := carts.Set(c.Request.Context(), cart); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

// HandleWatchCart handles GET /v1/cart/live. It streams the current cart and
// every subsequent update as server-sent events until the client disconnects
// or the subscription closes.
func HandleWatchCart(carts repository.CartStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := cartSessionID(c)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		updates, cancel, err := carts.Subscribe(c.Request.Context(), sid)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		defer cancel()

		cart, err := carts.Get(c.Request.Context(), sid)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.SSEvent("cart", toCartResponse(cart))
		c.Writer.Flush()

		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				c.SSEvent("cart", toCartResponse(update))
				c.Writer.Flush()
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(carts repository.CartStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := cartSessionID(c)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		if err := carts.Delete(c.Request.Context(), sid); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
