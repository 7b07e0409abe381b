package cli

import (
	"fmt"

	appidentity "github.com/invoicedash/backend/internal/application/identity"
	appinvoicing "github.com/invoicedash/backend/internal/application/invoicing"
	"github.com/spf13/cobra"
)

func newUserCmd(factory RuntimeFactory, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard users",
	}

	var input appidentity.CreateUserInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a user who can sign in to the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(factory, opts, func(rt Runtime) error {
				users, err := rt.Users()
				if err != nil {
					return err
				}
				info, err := users.CreateUser(cmd.Context(), input)
				if err != nil {
					return fmt.Errorf("creating user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s <%s> (%s)\n", info.Name, info.Email, info.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&input.Name, "name", "", "Display name")
	create.Flags().StringVar(&input.Email, "email", "", "Sign-in email")
	create.Flags().StringVar(&input.Password, "password", "", "Sign-in password (at least 6 characters)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)

	return cmd
}

func newCustomerCmd(factory RuntimeFactory, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage the customers invoices are billed to",
	}

	var input appinvoicing.CreateCustomerInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(factory, opts, func(rt Runtime) error {
				customers, err := rt.Customers()
				if err != nil {
					return err
				}
				customer, err := customers.CreateCustomer(cmd.Context(), input)
				if err != nil {
					return fmt.Errorf("creating customer: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created customer %s <%s> (%s)\n", customer.Name, customer.Email, customer.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&input.Name, "name", "", "Customer name")
	create.Flags().StringVar(&input.Email, "email", "", "Customer email")
	create.Flags().StringVar(&input.ImageURL, "image-url", "", "Avatar image URL")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")
	cmd.AddCommand(create)

	return cmd
}
