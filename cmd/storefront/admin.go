package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storefront/internal/admin"
	"storefront/internal/model"
)

// adminCmd groups the admin panel operations. Every subcommand needs a
// signed-in ADMIN session.
func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Store administration (ADMIN role required)",
	}

	run := c.withAdmin

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show dashboard totals",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, _ []string) error {
				s, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := [][]string{
					{"METRIC", "VALUE"},
					{"products", strconv.Itoa(s.TotalProducts)},
					{"orders", strconv.Itoa(s.TotalOrders)},
					{"users", strconv.Itoa(s.TotalUsers)},
					{"revenue", money(s.TotalRevenue)},
				}
				for _, st := range model.OrderStatuses {
					rows = append(rows, []string{"orders " + string(st), strconv.Itoa(s.OrdersByStatus[st])})
				}
				return c.table(rows)
			}),
		},
		&cobra.Command{
			Use:   "orders",
			Short: "List every order",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, _ []string) error {
				orders, err := svc.Orders(cmd.Context())
				if err != nil {
					return err
				}
				rows := [][]string{{"ID", "DATE", "CUSTOMER", "STATUS", "TOTAL"}}
				for _, o := range orders {
					customer := o.UserID
					if o.Customer != nil {
						customer = o.Customer.Username
					}
					rows = append(rows, []string{o.ID, formatTime(o.CreatedAt), customer, string(o.Status), money(o.Total)})
				}
				return c.table(rows)
			}),
		},
		&cobra.Command{
			Use:   "order-status <order-id> <status>",
			Short: "Move an order to pending, confirmed, shipped, delivered or cancelled",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, args []string) error {
				o, err := svc.UpdateOrderStatus(cmd.Context(), args[0], model.OrderStatus(args[1]))
				if err != nil {
					return err
				}
				c.printSuccess("Order %s is now %s", o.ID, o.Status)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "users",
			Short: "List accounts",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, _ []string) error {
				users, err := svc.Users(cmd.Context())
				if err != nil {
					return err
				}
				rows := [][]string{{"ID", "USERNAME", "EMAIL", "ROLE", "BLOCKED"}}
				for _, u := range users {
					rows = append(rows, []string{u.ID, u.Username, u.Email, u.Role, strconv.FormatBool(u.IsBlocked)})
				}
				return c.table(rows)
			}),
		},
		&cobra.Command{
			Use:   "set-role <user-id> <ADMIN|USER>",
			Short: "Change an account's role",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, args []string) error {
				role := args[1]
				u, err := svc.UpdateUser(cmd.Context(), args[0], model.UserUpdate{Role: &role})
				if err != nil {
					return err
				}
				c.printSuccess("%s is now %s", u.Username, u.Role)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete-user <user-id>",
			Short: "Delete an account",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, args []string) error {
				if err := svc.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				c.printSuccess("User %s deleted", args[0])
				return nil
			}),
		},
		c.createProductCmd(),
		&cobra.Command{
			Use:   "delete-product <product-id>",
			Short: "Delete a product",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, args []string) error {
				if err := svc.DeleteProduct(cmd.Context(), args[0]); err != nil {
					return err
				}
				c.printSuccess("Product %s deleted", args[0])
				return nil
			}),
		},
		c.createCategoryCmd(),
		&cobra.Command{
			Use:   "delete-category <category-id>",
			Short: "Delete a category",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, args []string) error {
				if err := svc.DeleteCategory(cmd.Context(), args[0]); err != nil {
					return err
				}
				c.printSuccess("Category %s deleted", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "low-stock",
			Short: "List products that are nearly sold out",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, _ []string) error {
				ps, err := svc.LowStock(cmd.Context())
				if err != nil {
					return err
				}
				return c.printProducts(ps)
			}),
		},
		&cobra.Command{
			Use:   "top-products",
			Short: "List best sellers",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, svc *admin.Service, _ []string) error {
				ps, err := svc.TopProducts(cmd.Context())
				if err != nil {
					return err
				}
				return c.printProducts(ps)
			}),
		},
	)
	return cmd
}

type adminFunc func(cmd *cobra.Command, svc *admin.Service, args []string) error

// withAdmin opens the app and hands its admin service to fn.
func (c *cli) withAdmin(fn adminFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := c.open(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd, app.Admin, args)
	}
}

func (c *cli) createProductCmd() *cobra.Command {
	var (
		in       model.ProductInput
		priceRaw string
		stock    int
	)
	cmd := &cobra.Command{
		Use:   "create-product <name>",
		Short: "Add a product, optionally uploading an image",
		Args:  cobra.ExactArgs(1),
		RunE: c.withAdmin(func(cmd *cobra.Command, svc *admin.Service, args []string) error {
			in.Name = args[0]
			p, err := parsePrice("--price", priceRaw)
			if err != nil {
				return err
			}
			in.Price = p
			if cmd.Flags().Changed("stock") {
				in.Stock = &stock
			}
			created, err := svc.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.printSuccess("Product %s created (%s)", created.Name, created.ID)
			return nil
		}),
	}
	fl := cmd.Flags()
	fl.StringVar(&priceRaw, "price", "", "unit price")
	fl.StringVar(&in.CategoryID, "category", "", "category ID")
	fl.StringVar(&in.Description, "description", "", "product description")
	fl.IntVar(&stock, "stock", 0, "units in stock")
	fl.StringVar(&in.ImagePath, "image", "", "image file to upload")
	cmd.MarkFlagRequired("price")
	cmd.MarkFlagRequired("category")
	return cmd
}

func (c *cli) createCategoryCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create-category <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: c.withAdmin(func(cmd *cobra.Command, svc *admin.Service, args []string) error {
			cat, err := svc.CreateCategory(cmd.Context(), model.CategoryInput{
				Name:        strings.TrimSpace(args[0]),
				Description: description,
			})
			if err != nil {
				return err
			}
			c.printSuccess("Category %s created (%s)", cat.Name, cat.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&description, "description", "", "category description")
	return cmd
}
