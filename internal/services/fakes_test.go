package services

import (
	"database/sql"
	"fmt"
	"time"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"
)

// fakeStore is the shared in-memory state behind the fake repositories. The
// fake transactor snapshots and restores it to mimic rollback.
type fakeStore struct {
	articles   map[int64]*models.Article
	carts      map[int64]*models.Cart // keyed by customer ID
	orders     map[int64]*models.Order
	orderLines map[int64][]models.OrderLine
	movements  []models.StockMovement
	addresses  map[int64]*models.Address
	links      map[string]int // "customerID:addressID" -> link attempts
	localities map[int64]*models.Locality
	customers  map[int64]*models.Customer
	users      map[int64]*models.User
	passwords  map[int64]string // user ID -> password hash
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		articles:   make(map[int64]*models.Article),
		carts:      make(map[int64]*models.Cart),
		orders:     make(map[int64]*models.Order),
		orderLines: make(map[int64][]models.OrderLine),
		addresses:  make(map[int64]*models.Address),
		links:      make(map[string]int),
		localities: make(map[int64]*models.Locality),
		customers:  make(map[int64]*models.Customer),
		users:      make(map[int64]*models.User),
		passwords:  make(map[int64]string),
		nextID:     1000,
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func cloneArticle(a *models.Article) *models.Article {
	cp := *a
	if a.Ingredient != nil {
		detail := *a.Ingredient
		cp.Ingredient = &detail
	}
	if a.Manufactured != nil {
		detail := *a.Manufactured
		detail.Recipe = make([]models.RecipeLine, len(a.Manufactured.Recipe))
		for i, rl := range a.Manufactured.Recipe {
			rl.Ingredient = nil
			detail.Recipe[i] = rl
		}
		cp.Manufactured = &detail
	}
	return &cp
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	c.nextID = s.nextID
	for id, a := range s.articles {
		c.articles[id] = cloneArticle(a)
	}
	for cid, cart := range s.carts {
		cp := *cart
		cp.Lines = append([]models.CartLine(nil), cart.Lines...)
		c.carts[cid] = &cp
	}
	for id, o := range s.orders {
		cp := *o
		c.orders[id] = &cp
	}
	for id, lines := range s.orderLines {
		c.orderLines[id] = append([]models.OrderLine(nil), lines...)
	}
	c.movements = append([]models.StockMovement(nil), s.movements...)
	for id, a := range s.addresses {
		cp := *a
		c.addresses[id] = &cp
	}
	for k, v := range s.links {
		c.links[k] = v
	}
	for id, l := range s.localities {
		cp := *l
		c.localities[id] = &cp
	}
	for id, cu := range s.customers {
		cp := *cu
		c.customers[id] = &cp
	}
	for id, u := range s.users {
		cp := *u
		c.users[id] = &cp
	}
	for id, hash := range s.passwords {
		c.passwords[id] = hash
	}
	return c
}

// Seeding helpers.

func (s *fakeStore) addIngredient(name string, salePrice, purchasePrice, stock float64) *models.Article {
	a := &models.Article{
		ID:        s.id(),
		Name:      name,
		SalePrice: salePrice,
		IsActive:  true,
		Type:      models.ArticleTypeIngredient,
		Ingredient: &models.IngredientDetail{
			PurchasePrice:   purchasePrice,
			CurrentStock:    stock,
			MeasurementUnit: "unit",
		},
	}
	s.articles[a.ID] = a
	return a
}

func (s *fakeStore) addManufactured(name string, salePrice float64, recipe ...models.RecipeLine) *models.Article {
	a := &models.Article{
		ID:        s.id(),
		Name:      name,
		SalePrice: salePrice,
		IsActive:  true,
		Type:      models.ArticleTypeManufactured,
		Manufactured: &models.ManufacturedDetail{
			Recipe: recipe,
		},
	}
	s.articles[a.ID] = a
	return a
}

func (s *fakeStore) addCustomer(name string) *models.Customer {
	c := &models.Customer{ID: s.id(), FullName: name}
	s.customers[c.ID] = c
	return c
}

func (s *fakeStore) addLocality(name string) *models.Locality {
	l := &models.Locality{ID: s.id(), Name: name}
	s.localities[l.ID] = l
	return l
}

func (s *fakeStore) seedCart(customerID int64, lines ...models.CartLine) *models.Cart {
	cart := &models.Cart{ID: s.id(), CustomerID: customerID}
	for _, line := range lines {
		line.ID = s.id()
		line.CartID = cart.ID
		cart.Lines = append(cart.Lines, line)
	}
	s.carts[customerID] = cart
	return cart
}

func (s *fakeStore) stockOf(articleID int64) float64 {
	return s.articles[articleID].Ingredient.CurrentStock
}

func (s *fakeStore) cartByID(cartID int64) *models.Cart {
	for _, cart := range s.carts {
		if cart.ID == cartID {
			return cart
		}
	}
	return nil
}

// fakeTxExecutor stands in for a *sql.Tx. The fakes never touch it, but its
// concrete type lets tests assert which executor a read went through.
type fakeTxExecutor struct{}

func (fakeTxExecutor) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (fakeTxExecutor) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (fakeTxExecutor) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }

// fakeTransactor restores the store snapshot when the callback errors, which
// is what a real rollback does to the database.
type fakeTransactor struct {
	store *fakeStore
}

func (t *fakeTransactor) WithinTransaction(fn func(tx repositories.SQLExecutor) error) error {
	snapshot := t.store.clone()
	if err := fn(fakeTxExecutor{}); err != nil {
		*t.store = *snapshot
		return err
	}
	return nil
}

// --- ArticleRepository fake ---

type fakeArticleRepo struct {
	store *fakeStore

	// readExecutors records the executor passed to each read, so tests can
	// check that reads inside a transaction use that transaction.
	readExecutors []repositories.SQLExecutor
}

func (r *fakeArticleRepo) CreateArticle(_ repositories.SQLExecutor, article *models.Article) (int64, error) {
	for _, a := range r.store.articles {
		if a.Name == article.Name {
			return 0, fmt.Errorf("%w: article name '%s' already exists", repositories.ErrDuplicateKey, article.Name)
		}
	}
	article.ID = r.store.id()
	r.store.articles[article.ID] = cloneArticle(article)
	return article.ID, nil
}

func (r *fakeArticleRepo) GetArticleByID(executor repositories.SQLExecutor, id int64) (*models.Article, error) {
	r.readExecutors = append(r.readExecutors, executor)
	a, ok := r.store.articles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	result := cloneArticle(a)
	if result.Manufactured != nil {
		for i := range result.Manufactured.Recipe {
			if ing, ok := r.store.articles[result.Manufactured.Recipe[i].IngredientID]; ok {
				result.Manufactured.Recipe[i].Ingredient = cloneArticle(ing)
			}
		}
	}
	return result, nil
}

func (r *fakeArticleRepo) GetArticles(filters models.ArticleFilters) ([]models.Article, int, error) {
	var articles []models.Article
	for _, a := range r.store.articles {
		if filters.Type != nil && *filters.Type != "" && a.Type != *filters.Type {
			continue
		}
		if filters.OnlyActive && !a.IsActive {
			continue
		}
		articles = append(articles, *cloneArticle(a))
	}
	return articles, len(articles), nil
}

func (r *fakeArticleRepo) UpdateArticle(_ repositories.SQLExecutor, article *models.Article) error {
	if _, ok := r.store.articles[article.ID]; !ok {
		return repositories.ErrNotFound
	}
	existing := r.store.articles[article.ID]
	updated := cloneArticle(article)
	if existing.Manufactured != nil && updated.Manufactured != nil {
		updated.Manufactured.Recipe = existing.Manufactured.Recipe
	}
	r.store.articles[article.ID] = updated
	return nil
}

func (r *fakeArticleRepo) SetArticleActive(_ repositories.SQLExecutor, id int64, active bool) error {
	a, ok := r.store.articles[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.IsActive = active
	return nil
}

func (r *fakeArticleRepo) DeleteArticle(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.store.articles[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.articles, id)
	return nil
}

func (r *fakeArticleRepo) ReplaceRecipe(_ repositories.SQLExecutor, articleID int64, lines []models.RecipeLine) error {
	a, ok := r.store.articles[articleID]
	if !ok || a.Manufactured == nil {
		return repositories.ErrNotFound
	}
	a.Manufactured.Recipe = append([]models.RecipeLine(nil), lines...)
	return nil
}

func (r *fakeArticleRepo) GetRecipeLines(executor repositories.SQLExecutor, articleID int64) ([]models.RecipeLine, error) {
	r.readExecutors = append(r.readExecutors, executor)
	a, ok := r.store.articles[articleID]
	if !ok || a.Manufactured == nil {
		return nil, repositories.ErrNotFound
	}
	return append([]models.RecipeLine(nil), a.Manufactured.Recipe...), nil
}

func (r *fakeArticleRepo) GetIngredientStock(executor repositories.SQLExecutor, id int64) (float64, bool, string, error) {
	r.readExecutors = append(r.readExecutors, executor)
	a, ok := r.store.articles[id]
	if !ok || a.Type != models.ArticleTypeIngredient {
		return 0, false, "", repositories.ErrNotFound
	}
	return a.Ingredient.CurrentStock, a.IsActive, a.Name, nil
}

func (r *fakeArticleRepo) DeductStock(_ repositories.SQLExecutor, id int64, quantity float64) (float64, error) {
	a, ok := r.store.articles[id]
	if !ok || a.Type != models.ArticleTypeIngredient {
		return 0, repositories.ErrNotFound
	}
	if a.Ingredient.CurrentStock < quantity {
		return a.Ingredient.CurrentStock, fmt.Errorf("%w: ingredient ID %d has %.2f available, requested %.2f",
			repositories.ErrStockConflict, id, a.Ingredient.CurrentStock, quantity)
	}
	a.Ingredient.CurrentStock -= quantity
	return a.Ingredient.CurrentStock, nil
}

func (r *fakeArticleRepo) AddStock(_ repositories.SQLExecutor, id int64, quantity float64) (float64, error) {
	a, ok := r.store.articles[id]
	if !ok || a.Type != models.ArticleTypeIngredient {
		return 0, repositories.ErrNotFound
	}
	a.Ingredient.CurrentStock += quantity
	return a.Ingredient.CurrentStock, nil
}

// --- CartRepository fake ---

type fakeCartRepo struct {
	store *fakeStore

	readExecutors []repositories.SQLExecutor
}

func (r *fakeCartRepo) GetCartByCustomerID(executor repositories.SQLExecutor, customerID int64) (*models.Cart, error) {
	r.readExecutors = append(r.readExecutors, executor)
	cart, ok := r.store.carts[customerID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *cart
	cp.Lines = make([]models.CartLine, len(cart.Lines))
	for i, line := range cart.Lines {
		if a, ok := r.store.articles[line.ArticleID]; ok {
			line.Article = cloneArticle(a)
		}
		cp.Lines[i] = line
	}
	return &cp, nil
}

func (r *fakeCartRepo) CreateCart(_ repositories.SQLExecutor, customerID int64) (int64, error) {
	cart := &models.Cart{ID: r.store.id(), CustomerID: customerID}
	r.store.carts[customerID] = cart
	return cart.ID, nil
}

func (r *fakeCartRepo) GetCartLineByArticle(cartID, articleID int64) (*models.CartLine, error) {
	cart := r.store.cartByID(cartID)
	if cart == nil {
		return nil, repositories.ErrNotFound
	}
	for _, line := range cart.Lines {
		if line.ArticleID == articleID {
			cp := line
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCartRepo) CreateCartLine(_ repositories.SQLExecutor, line *models.CartLine) (int64, error) {
	cart := r.store.cartByID(line.CartID)
	if cart == nil {
		return 0, repositories.ErrNotFound
	}
	line.ID = r.store.id()
	cart.Lines = append(cart.Lines, *line)
	return line.ID, nil
}

func (r *fakeCartRepo) UpdateCartLineQuantity(_ repositories.SQLExecutor, lineID int64, quantity int) error {
	for _, cart := range r.store.carts {
		for i := range cart.Lines {
			if cart.Lines[i].ID == lineID {
				cart.Lines[i].Quantity = quantity
				return nil
			}
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeCartRepo) DeleteCartLine(_ repositories.SQLExecutor, lineID int64) error {
	for _, cart := range r.store.carts {
		for i := range cart.Lines {
			if cart.Lines[i].ID == lineID {
				cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
				return nil
			}
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeCartRepo) ClearCart(_ repositories.SQLExecutor, cartID int64) (int64, error) {
	cart := r.store.cartByID(cartID)
	if cart == nil {
		return 0, repositories.ErrNotFound
	}
	removed := int64(len(cart.Lines))
	cart.Lines = nil
	return removed, nil
}

// --- OrderRepository fake ---

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) (int64, error) {
	order.ID = r.store.id()
	cp := *order
	r.store.orders[order.ID] = &cp
	return order.ID, nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID int64) (*models.Order, error) {
	o, ok := r.store.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	var orders []models.Order
	for _, o := range r.store.orders {
		if filters.CustomerID != nil && o.CustomerID != *filters.CustomerID {
			continue
		}
		if filters.Status != nil && *filters.Status != "" && o.Status != *filters.Status {
			continue
		}
		orders = append(orders, *o)
	}
	return orders, len(orders), nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ repositories.SQLExecutor, orderID int64, newStatus string, _ time.Time) error {
	o, ok := r.store.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Status = newStatus
	return nil
}

func (r *fakeOrderRepo) SetOrderInactive(_ repositories.SQLExecutor, orderID int64) error {
	o, ok := r.store.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	o.IsActive = false
	return nil
}

func (r *fakeOrderRepo) CreateOrderLine(_ repositories.SQLExecutor, line *models.OrderLine) (int64, error) {
	line.ID = r.store.id()
	r.store.orderLines[line.OrderID] = append(r.store.orderLines[line.OrderID], *line)
	return line.ID, nil
}

func (r *fakeOrderRepo) GetOrderLinesByOrderID(orderID int64) ([]models.OrderLine, error) {
	return append([]models.OrderLine(nil), r.store.orderLines[orderID]...), nil
}

// --- AddressRepository fake ---

type fakeAddressRepo struct {
	store *fakeStore
}

func linkKey(customerID, addressID int64) string {
	return fmt.Sprintf("%d:%d", customerID, addressID)
}

func (r *fakeAddressRepo) GetLocalityByID(id int64) (*models.Locality, error) {
	l, ok := r.store.localities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeAddressRepo) GetLocalities() ([]models.Locality, error) {
	var localities []models.Locality
	for _, l := range r.store.localities {
		localities = append(localities, *l)
	}
	return localities, nil
}

func (r *fakeAddressRepo) FindByExactMatch(_ repositories.SQLExecutor, street, number, postalCode string, localityID int64) (*models.Address, error) {
	for _, a := range r.store.addresses {
		if a.Street == street && a.Number == number && a.PostalCode == postalCode && a.LocalityID == localityID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAddressRepo) CreateAddress(_ repositories.SQLExecutor, address *models.Address) (int64, error) {
	address.ID = r.store.id()
	cp := *address
	r.store.addresses[address.ID] = &cp
	return address.ID, nil
}

func (r *fakeAddressRepo) LinkCustomerAddress(_ repositories.SQLExecutor, customerID, addressID int64) error {
	r.store.links[linkKey(customerID, addressID)]++
	return nil
}

func (r *fakeAddressRepo) GetCustomerAddresses(customerID int64) ([]models.Address, error) {
	var addresses []models.Address
	for _, a := range r.store.addresses {
		if r.store.links[linkKey(customerID, a.ID)] > 0 {
			addresses = append(addresses, *a)
		}
	}
	return addresses, nil
}

// --- StockMovementRepository fake ---

type fakeMovementRepo struct {
	store      *fakeStore
	failOnCall int // fail the Nth CreateMovement call, 0 = never
	calls      int
}

func (r *fakeMovementRepo) CreateMovement(_ repositories.SQLExecutor, movement *models.StockMovement) (int64, error) {
	r.calls++
	if r.failOnCall > 0 && r.calls == r.failOnCall {
		return 0, fmt.Errorf("%w: creating stock movement: simulated failure", repositories.ErrDatabaseError)
	}
	movement.ID = r.store.id()
	r.store.movements = append(r.store.movements, *movement)
	return movement.ID, nil
}

func (r *fakeMovementRepo) GetMovements(articleID *int64, orderID *int64, movementType *string, _, _ int) ([]models.StockMovement, int, error) {
	var movements []models.StockMovement
	for _, m := range r.store.movements {
		if articleID != nil && m.ArticleID != *articleID {
			continue
		}
		if orderID != nil && (m.OrderID == nil || *m.OrderID != *orderID) {
			continue
		}
		if movementType != nil && *movementType != "" && m.MovementType != *movementType {
			continue
		}
		movements = append(movements, m)
	}
	return movements, len(movements), nil
}

// --- CustomerRepository fake ---

type fakeCustomerRepo struct {
	store *fakeStore
}

func (r *fakeCustomerRepo) CreateCustomer(_ repositories.SQLExecutor, customer *models.Customer) (int64, error) {
	customer.ID = r.store.id()
	cp := *customer
	r.store.customers[customer.ID] = &cp
	return customer.ID, nil
}

func (r *fakeCustomerRepo) GetCustomerByID(id int64) (*models.Customer, error) {
	c, ok := r.store.customers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetCustomerByUserID(userID int64) (*models.Customer, error) {
	for _, c := range r.store.customers {
		if c.UserID != nil && *c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCustomerRepo) GetCustomers(_, _ int, _ *string) ([]models.Customer, int, error) {
	var customers []models.Customer
	for _, c := range r.store.customers {
		customers = append(customers, *c)
	}
	return customers, len(customers), nil
}

func (r *fakeCustomerRepo) UpdateCustomer(_ repositories.SQLExecutor, customer *models.Customer) error {
	if _, ok := r.store.customers[customer.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *customer
	r.store.customers[customer.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) DeleteCustomer(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.store.customers[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.customers, id)
	return nil
}

// --- AuthRepository fake ---

type fakeAuthRepo struct {
	store *fakeStore
}

func (r *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User, passwordHash string) (int64, error) {
	for _, u := range r.store.users {
		if u.Username == user.Username {
			return 0, fmt.Errorf("%w: username '%s' already exists", repositories.ErrDuplicateKey, user.Username)
		}
	}
	user.ID = r.store.id()
	cp := *user
	r.store.users[user.ID] = &cp
	r.store.passwords[user.ID] = passwordHash
	return user.ID, nil
}

func (r *fakeAuthRepo) FindUserByID(id int64) (*models.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeAuthRepo) FindUserByUsername(username string) (*models.User, string, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, r.store.passwords[u.ID], nil
		}
	}
	return nil, "", repositories.ErrNotFound
}
