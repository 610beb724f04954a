package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"TaxLedger/internal/model"
)

func parseFees(args []string) (model.FeeSchedule, error) {
	var rates [5]uint64
	for i, s := range args {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return model.FeeSchedule{}, fmt.Errorf("fee %d: %w", i+1, err)
		}
		rates[i] = v
	}
	return model.NewFeeSchedule(rates[0], rates[1], rates[2], rates[3], rates[4]), nil
}

func parsePct(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("percentage: %w", err)
	}
	return v, nil
}

const feesUsage = "<marketing> <development> <liquidity> <reflection> <burn>"

var setBuyFeesCmd = &cobra.Command{
	Use:   "set-buy-fees " + feesUsage,
	Short: "Replace the buy fee schedule (whole percent per component)",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := parseFees(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			if err := a.token.SetBuyFees(a.caller(), f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total buy tax: %d%%\n", a.token.TotalBuyTax())
			return nil
		})
	},
}

var setSellFeesCmd = &cobra.Command{
	Use:   "set-sell-fees " + feesUsage,
	Short: "Replace the sell fee schedule (whole percent per component)",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := parseFees(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			if err := a.token.SetSellFees(a.caller(), f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total sell tax: %d%%\n", a.token.TotalSellTax())
			return nil
		})
	},
}

var setMaxBalanceCmd = &cobra.Command{
	Use:   "set-max-balance <percent>",
	Short: "Set the wallet cap in whole percent of supply (floor 2)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pct, err := parsePct(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			if err := a.token.SetMaxBalancePercentage(a.caller(), pct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "max balance: %s\n", a.token.MaxBalance().Dec())
			return nil
		})
	},
}

var setMaxTxCmd = &cobra.Command{
	Use:   "set-max-tx <tenths-of-percent>",
	Short: "Set the transaction cap in tenths of a percent of supply (floor 5)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pct, err := parsePct(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			if err := a.token.SetMaxTxPercentage(a.caller(), pct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "max tx: %s\n", a.token.MaxTx().Dec())
			return nil
		})
	},
}

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Open trading; this cannot be undone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.token.TriggerLaunch(a.caller()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "launched")
			return nil
		})
	},
}

var (
	exemptFees   bool
	exemptLimits bool
	exemptRemove bool
)

var exemptCmd = &cobra.Command{
	Use:   "exempt <address>",
	Short: "Add or remove an address from the fee and/or limit exemption sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !exemptFees && !exemptLimits {
			return fmt.Errorf("pass --fees, --limits or both")
		}
		addr := model.Address(args[0])
		return withApp(cmd, func(a *app) error {
			if exemptFees {
				if err := a.token.SetFeeExempt(a.caller(), addr, !exemptRemove); err != nil {
					return err
				}
			}
			if exemptLimits {
				if err := a.token.SetLimitExempt(a.caller(), addr, !exemptRemove); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var liquidityRemove bool

var liquiditySourceCmd = &cobra.Command{
	Use:   "liquidity-source <address>",
	Short: "Register or remove an AMM pool or router address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return a.token.SetLiquiditySource(a.caller(), model.Address(args[0]), !liquidityRemove)
		})
	},
}

var transferOwnershipCmd = &cobra.Command{
	Use:   "transfer-ownership <new-owner>",
	Short: "Hand the owner role to another address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return a.token.TransferOwnership(a.caller(), model.Address(args[0]))
		})
	},
}

var swapBackCmd = &cobra.Command{
	Use:   "swap-back [router]",
	Short: "Release the accrued fee buckets to a liquidity source (owner only)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			router := model.Address(a.cfg.SwapBack.Router)
			if len(args) == 1 {
				router = model.Address(args[0])
			}
			drained, err := a.token.SwapBack(a.caller(), router)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "released %s to %s\n", drained.Sum().Dec(), router)
			return nil
		})
	},
}

func init() {
	exemptCmd.Flags().BoolVar(&exemptFees, "fees", false, "fee exemption")
	exemptCmd.Flags().BoolVar(&exemptLimits, "limits", false, "limit exemption")
	exemptCmd.Flags().BoolVar(&exemptRemove, "remove", false, "remove instead of add")
	liquiditySourceCmd.Flags().BoolVar(&liquidityRemove, "remove", false, "remove instead of add")
}
