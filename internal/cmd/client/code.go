package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewCodeCommand constructs the `code` command group and subcommands.
func NewCodeCommand(baseURL BaseURLFunc) *cobra.Command {
	codeCmd := &cobra.Command{Use: "code", Short: "Code operations"}

	codeCmd.AddCommand(
		newCodeCreateCommand(baseURL),
		newCodeSaleCommand(baseURL),
		newCodeVerifyCommand(baseURL),
		newCodeListCommand(baseURL),
	)

	return codeCmd
}

// newCodeCreateCommand constructs the `code create` subcommand.
func newCodeCreateCommand(baseURL BaseURLFunc) *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, _ := cmd.Flags().GetString("date")
			info, _ := cmd.Flags().GetString("info")

			body := map[string]string{}
			if date != "" {
				body["manufacturingDate"] = date
			}
			if info != "" {
				body["info"] = info
			}
			status, out, err := postJSON(cmd.Context(), baseURL()+"/v1/codes", body)
			if err != nil {
				return err
			}
			if status != 201 {
				return fmt.Errorf("create failed (%d): %s", status, strings.TrimSpace(string(out)))
			}
			printJSON(cmd.OutOrStdout(), out)
			return nil
		},
	}
	createCmd.Flags().String("date", "", "Manufacturing date (YYYY-MM-DD; default today)")
	createCmd.Flags().String("info", "", "Descriptive label (default generated)")
	return createCmd
}

// newCodeSaleCommand constructs the `code sale` subcommand.
func newCodeSaleCommand(baseURL BaseURLFunc) *cobra.Command {
	saleCmd := &cobra.Command{
		Use:   "sale",
		Short: "Record the one-time sale of a code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			date, _ := cmd.Flags().GetString("date")
			if id == "" {
				return fmt.Errorf("--id is required")
			}

			body := map[string]string{"id": id}
			if date != "" {
				body["soldDate"] = date
			}
			status, out, err := postJSON(cmd.Context(), baseURL()+"/v1/codes/sale", body)
			if err != nil {
				return err
			}
			switch status {
			case 204:
				fmt.Fprintln(cmd.OutOrStdout(), "sale recorded")
				return nil
			case 404:
				return fmt.Errorf("unknown code %s", id)
			case 409:
				return fmt.Errorf("sale already recorded for %s", id)
			default:
				return fmt.Errorf("sale failed (%d): %s", status, strings.TrimSpace(string(out)))
			}
		},
	}
	saleCmd.Flags().String("id", "", "Code identifier")
	saleCmd.Flags().String("date", "", "Sold date (YYYY-MM-DD; default today)")
	return saleCmd
}

// newCodeVerifyCommand constructs the `code verify` subcommand. It fetches
// the public verification page and reports the badge, so each run counts
// as a scan exactly like a QR lookup would.
func newCodeVerifyCommand(baseURL BaseURLFunc) *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a code (counts as a scan)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				return fmt.Errorf("--id is required")
			}

			status, out, err := getBody(cmd.Context(), baseURL()+"/"+url.PathEscape(id))
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("verify failed (%d)", status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status:", badgeOf(string(out)))
			return nil
		},
	}
	verifyCmd.Flags().String("id", "", "Code identifier")
	return verifyCmd
}

// badgeOf extracts the badge label from a verification page. The checks are
// ordered so that UNVERIFIED is not shadowed by its VERIFIED substring.
func badgeOf(page string) string {
	switch {
	case strings.Contains(page, ">SCAN LIMIT REACHED<"):
		return "SCAN LIMIT REACHED"
	case strings.Contains(page, ">EXPIRED<"):
		return "EXPIRED"
	case strings.Contains(page, ">UNVERIFIED<"):
		return "UNVERIFIED"
	case strings.Contains(page, ">VERIFIED<"):
		return "VERIFIED"
	default:
		return "UNKNOWN"
	}
}

// newCodeListCommand constructs the `code list` subcommand.
func newCodeListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List codes, optionally filtered by a CEL expression",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			filter, _ := cmd.Flags().GetString("filter")

			q := url.Values{}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			u := baseURL() + "/v1/codes"
			if len(q) > 0 {
				u += "?" + q.Encode()
			}
			status, out, err := getBody(cmd.Context(), u)
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("list failed (%d): %s", status, strings.TrimSpace(string(out)))
			}
			printJSON(cmd.OutOrStdout(), out)
			return nil
		},
	}
	listCmd.Flags().Int("limit", 0, "Maximum codes to return (default server-side)")
	listCmd.Flags().String("filter", "", "CEL filter, e.g. 'scan_count > 3 && !sold'")
	return listCmd
}
