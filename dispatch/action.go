/*
Package dispatch executes structured actions against the shop store.

PURPOSE:
  The chat planner turns free-form operator messages into a single
  structured Action (entity + operation + params). This package is the
  only component that actually mutates data on behalf of the chat:
  it authorizes the action against the caller's role, normalizes the
  loosely-typed params, resolves product references, runs the mutation,
  and produces a human-readable narration of what happened.

PIPELINE:
  Action -> guard (role check) -> normalize (param coercion)
         -> resolve (id/name lookup) -> mutate -> narration

KEY CONCEPTS:
  Action:     What the planner asked for. Params is a loosely-typed
              map because it comes straight from model JSON output.
  Service:    Typed shop operations shared by the chat dispatcher and
              the REST handlers (purchase lifecycle, cascading product
              delete, bulk stock writes).
  Dispatcher: Chat-facing executor. Never returns an error to the
              caller: every failure becomes a narration string.

SEE ALSO:
  - planner/planner.go: Produces Actions from chat messages
  - api/handlers.go: REST surface reusing Service
*/
package dispatch

// Action entities and operations, as emitted by the planner.
const (
	EntityProduct  = "product"
	EntityPurchase = "purchase"

	OpCreate = "create"
	OpRead   = "read"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ScopeAll marks an action that targets every product at once.
const ScopeAll = "all"

// Action is one planned operation against the store. Params values are
// whatever the model produced (string/float64/bool/nil), so every read
// goes through the normalize helpers.
type Action struct {
	Entity    string         `json:"entity"`
	Operation string         `json:"operation"`
	Params    map[string]any `json:"params"`
}

// param returns the raw param value, tolerating a nil map.
func (a *Action) param(key string) any {
	if a.Params == nil {
		return nil
	}
	return a.Params[key]
}

// productCreateParams is the normalized form of a product create.
type productCreateParams struct {
	Name         string
	Category     string
	Price        *int64
	Description  string
	InitialStock *int64
}

func (a *Action) productCreate() productCreateParams {
	return productCreateParams{
		Name:         asString(a.param("name")),
		Category:     asString(a.param("category")),
		Price:        asAmount(a.param("price")),
		Description:  asString(a.param("description")),
		InitialStock: asAmount(a.param("initialStock")),
	}
}

// productReadParams narrows a read to an id or a name query.
type productReadParams struct {
	ID    *int64
	Query string
}

func (a *Action) productRead() productReadParams {
	p := productReadParams{
		ID:    asID(a.param("id")),
		Query: asString(a.param("query")),
	}
	if p.Query == "" {
		p.Query = asString(a.param("name"))
	}
	return p
}

// productUpdateParams carries the optional new values plus the bulk
// scope marker.
type productUpdateParams struct {
	ID             *int64
	Name           string
	Scope          string
	NewName        string
	NewCategory    string
	NewPrice       *int64
	NewDescription *string
	NewStock       *int64
}

func (a *Action) productUpdate() productUpdateParams {
	p := productUpdateParams{
		ID:          asID(a.param("id")),
		Name:        asString(a.param("name")),
		Scope:       asString(a.param("scope")),
		NewName:     asString(a.param("newName")),
		NewCategory: asString(a.param("newCategory")),
		NewPrice:    asAmount(a.param("newPrice")),
		NewStock:    asAmount(a.param("newStock")),
	}
	if s, ok := a.param("newDescription").(string); ok {
		p.NewDescription = &s
	}
	return p
}

// productDeleteParams covers both single and bulk delete.
type productDeleteParams struct {
	ID               *int64
	Name             string
	Scope            string
	ConfirmDeleteAll bool
}

func (a *Action) productDelete() productDeleteParams {
	return productDeleteParams{
		ID:               asID(a.param("id")),
		Name:             asString(a.param("name")),
		Scope:            asString(a.param("scope")),
		ConfirmDeleteAll: asBool(a.param("confirmDeleteAll")),
	}
}

// purchaseCreateParams identifies the product by id or name.
type purchaseCreateParams struct {
	ProductID   *int64
	ProductName string
	Quantity    *int64
	BuyerName   string
}

func (a *Action) purchaseCreate() purchaseCreateParams {
	return purchaseCreateParams{
		ProductID:   asID(a.param("productId")),
		ProductName: asString(a.param("productName")),
		Quantity:    asAmount(a.param("quantity")),
		BuyerName:   asString(a.param("buyerName")),
	}
}

// purchaseUpdateParams is a status transition request.
type purchaseUpdateParams struct {
	ID        *int64
	NewStatus string
}

func (a *Action) purchaseUpdate() purchaseUpdateParams {
	return purchaseUpdateParams{
		ID:        asID(a.param("id")),
		NewStatus: asString(a.param("newStatus")),
	}
}
