package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/storefront"
)

func (c *cli) productsCmd() *cobra.Command {
	var (
		f                  catalog.Filter
		minPrice, maxPrice string
	)
	cmd := &cobra.Command{
		Use:   "products [query]",
		Short: "List catalog products",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.Query = args[0]
			}
			var err error
			if f.MinPrice, err = parsePrice("--min", minPrice); err != nil {
				return err
			}
			if f.MaxPrice, err = parsePrice("--max", maxPrice); err != nil {
				return err
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.EnsureCatalog(cmd.Context()); err != nil {
				return err
			}
			return c.printProducts(app.Catalog.Search(f))
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVar(&f.CategoryIDs, "category", nil, "only these category IDs")
	fl.StringVar(&minPrice, "min", "", "lowest unit price")
	fl.StringVar(&maxPrice, "max", "", "highest unit price")
	fl.BoolVar(&f.InStockOnly, "in-stock", false, "hide sold-out products")
	return cmd
}

func parsePrice(flag, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a price", flag, raw)
	}
	return &d, nil
}

func (c *cli) printProducts(ps []model.Product) error {
	rows := [][]string{{"ID", "NAME", "PRICE", "STOCK", "CATEGORY"}}
	for _, p := range ps {
		stock := strconv.Itoa(p.Stock)
		if !p.InStock() {
			stock = "sold out"
		}
		rows = append(rows, []string{p.ID, p.Name, money(p.Price), stock, p.Category.Name})
	}
	return c.table(rows)
}

func (c *cli) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.EnsureCatalog(cmd.Context()); err != nil {
				return err
			}
			rows := [][]string{{"ID", "NAME", "DESCRIPTION"}}
			for _, cat := range app.Catalog.Categories() {
				rows = append(rows, []string{cat.ID, cat.Name, cat.Description})
			}
			return c.table(rows)
		},
	}
}

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Long: `Without a subcommand, shows the cart. Signed in, the cart is the account's
saved cart; otherwise it is a guest cart that ends with the process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Cart.Refresh(cmd.Context()); err != nil {
				c.printWarning("Could not refresh the cart: %s", model.ErrorMessage(err))
			}
			return c.printCart(app)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <product-id> [quantity]",
			Short: "Add a product to the cart",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				qty := 1
				if len(args) == 2 {
					var err error
					if qty, err = parseQuantity(args[1]); err != nil {
						return err
					}
				}
				app, err := c.open(cmd.Context())
				if err != nil {
					return err
				}
				if err := app.AddToCart(cmd.Context(), args[0], qty); err != nil {
					return err
				}
				return c.printCart(app)
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := c.open(cmd.Context())
				if err != nil {
					return err
				}
				if err := app.Cart.RemoveItem(cmd.Context(), args[0]); err != nil {
					return err
				}
				return c.printCart(app)
			},
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Set a line's quantity; 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity %q is not a number", args[1])
				}
				app, err := c.open(cmd.Context())
				if err != nil {
					return err
				}
				if err := app.Cart.SetQuantity(cmd.Context(), args[0], qty); err != nil {
					return err
				}
				return c.printCart(app)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := c.open(cmd.Context())
				if err != nil {
					return err
				}
				if err := app.Cart.Clear(cmd.Context()); err != nil {
					return err
				}
				c.printSuccess("Cart cleared")
				return nil
			},
		},
	)
	return cmd
}

func parseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("quantity %q must be a whole number of at least 1", raw)
	}
	return n, nil
}

func (c *cli) printCart(app *storefront.App) error {
	snap := app.Cart.Snapshot()
	if len(snap.Items) == 0 {
		c.printInfo("Your cart is empty")
		return nil
	}
	rows := [][]string{{"ID", "NAME", "PRICE", "QTY", "SUBTOTAL"}}
	for _, it := range snap.Items {
		rows = append(rows, []string{it.ProductID, it.Name, money(it.Price), strconv.Itoa(it.Quantity), money(it.Subtotal())})
	}
	rows = append(rows, []string{"", "Total", "", strconv.Itoa(snap.TotalItems), money(snap.TotalPrice)})
	return c.table(rows)
}

func (c *cli) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			order, err := app.Cart.PlaceOrder(cmd.Context())
			if err != nil {
				return err
			}
			if order.ID != "" {
				c.printSuccess("Order %s placed: %s, %s", order.ID, money(order.Total), order.Status)
			} else {
				c.printSuccess("Order placed: %s, %s", money(order.Total), order.Status)
			}
			return nil
		},
	}
}

func (c *cli) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			orders, err := app.Orders.MyOrders(cmd.Context())
			if err != nil {
				return err
			}
			return c.printOrders(orders)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			o, err := app.Orders.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !c.quiet {
				fmt.Fprintf(c.out, "Order %s  %s  %s  %s\n", o.ID, o.Status, money(o.Total), formatTime(o.CreatedAt))
			}
			rows := [][]string{{"PRODUCT", "NAME", "PRICE", "QTY"}}
			for _, it := range o.Items {
				rows = append(rows, []string{it.ProductID, it.Name, money(it.Price), strconv.Itoa(it.Quantity)})
			}
			return c.table(rows)
		},
	})
	return cmd
}

func (c *cli) printOrders(orders []model.Order) error {
	if len(orders) == 0 {
		c.printInfo("No orders yet")
		return nil
	}
	rows := [][]string{{"ID", "DATE", "STATUS", "ITEMS", "TOTAL"}}
	for _, o := range orders {
		n := 0
		for _, it := range o.Items {
			n += it.Quantity
		}
		rows = append(rows, []string{o.ID, formatTime(o.CreatedAt), string(o.Status), strconv.Itoa(n), money(o.Total)})
	}
	return c.table(rows)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
