package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kartikbazzad/bunbase/bunquery"
)

type cliConfig struct {
	BaseURL string `json:"base_url"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".bunquery")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "cli_config.json"), nil
}

func loadConfig() *cliConfig {
	cfg := &cliConfig{BaseURL: "http://localhost:3020"}
	path, err := configPath()
	if err != nil {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	json.Unmarshal(data, cfg)
	return cfg
}

func saveConfig(cfg *cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// parseFilter turns "age:>=:30" into a FilterClause. The value part is JSON
// when it parses as JSON, a plain string otherwise.
func parseFilter(arg string) (bunquery.FilterClause, error) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) != 3 {
		return bunquery.FilterClause{}, fmt.Errorf("filter %q must have the form field:operator:value", arg)
	}
	clause := bunquery.FilterClause{
		Field:    parts[0],
		Operator: bunquery.Operator(parts[1]),
	}
	var value any
	if err := json.Unmarshal([]byte(parts[2]), &value); err == nil {
		clause.Value = value
	} else {
		clause.Value = parts[2]
	}
	return clause, nil
}

func post(baseURL, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := http.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, data, "", "  ") == nil {
		data = pretty.Bytes()
	}
	fmt.Println(string(data))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func main() {
	cfg := loadConfig()

	root := &cobra.Command{
		Use:   "bunquery",
		Short: "Client for the bunquery document query service",
	}

	var (
		filters []string
		page    int
		limit   int
		offset  int
		sortBy  string
		desc    bool
	)

	queryCmd := &cobra.Command{
		Use:   "query <collection>",
		Short: "Run a filtered, paginated query against a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := bunquery.Request{}
			for _, arg := range filters {
				clause, err := parseFilter(arg)
				if err != nil {
					return err
				}
				req.Filters = append(req.Filters, clause)
			}
			if page > 0 {
				req.Pagination.Page = page
			}
			if limit > 0 {
				req.Pagination.Limit = limit
			}
			if offset > 0 {
				req.Pagination.Offset = offset
			}
			req.Pagination.SortBy = sortBy
			if desc {
				req.Pagination.SortDirection = "desc"
			}
			return post(cfg.BaseURL, "/v1/collections/"+args[0]+"/query", req)
		},
	}
	queryCmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter clause as field:operator:value (repeatable)")
	queryCmd.Flags().IntVar(&page, "page", 0, "page number")
	queryCmd.Flags().IntVar(&limit, "limit", 0, "page size")
	queryCmd.Flags().IntVar(&offset, "offset", 0, "raw offset applied before paging")
	queryCmd.Flags().StringVar(&sortBy, "sort", "", "sort field")
	queryCmd.Flags().BoolVar(&desc, "desc", false, "sort descending")

	var data string
	insertCmd := &cobra.Command{
		Use:   "insert <collection>",
		Short: "Insert a JSON document into a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc map[string]any
			if err := json.Unmarshal([]byte(data), &doc); err != nil {
				return fmt.Errorf("--data must be a JSON object: %w", err)
			}
			return post(cfg.BaseURL, "/v1/collections/"+args[0]+"/documents", doc)
		},
	}
	insertCmd.Flags().StringVarP(&data, "data", "d", "{}", "document body as JSON")

	configCmd := &cobra.Command{
		Use:   "config <base-url>",
		Short: "Set the server base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.BaseURL = strings.TrimSuffix(args[0], "/")
			return saveConfig(cfg)
		},
	}

	root.AddCommand(queryCmd, insertCmd, configCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
