package executor

import (
	"context"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/state"
)

// InventoryExecutor handles item grants, removals, equipment, and the
// inventory/equipment queries whose values stories usually capture.
type InventoryExecutor struct{}

func (e *InventoryExecutor) Name() string { return "inventory" }

func (e *InventoryExecutor) SupportedKinds() []scenario.Kind {
	return []scenario.Kind{
		scenario.KindGiveItem,
		scenario.KindRemoveItem,
		scenario.KindEquipItem,
		scenario.KindGetInventory,
		scenario.KindGetEquipment,
	}
}

func (e *InventoryExecutor) Execute(ctx context.Context, act scenario.Action, backend scenario.Backend, _ *state.Manager) scenario.ActionResult {
	player, err := act.Require("player")
	if err != nil {
		return scenario.FailErr(err)
	}

	switch act.Kind {
	case scenario.KindGiveItem:
		item, err := act.Require("item")
		if err != nil {
			return scenario.FailErr(err)
		}
		resp, err := backend.GiveItem(ctx, player, item, act.Int("count", 1))
		if err != nil {
			return backendFail("give_item", err)
		}
		return scenario.OK(resp)

	case scenario.KindRemoveItem:
		item, err := act.Require("item")
		if err != nil {
			return scenario.FailErr(err)
		}
		resp, err := backend.RemoveItem(ctx, player, item, act.Int("count", 1))
		if err != nil {
			return backendFail("remove_item", err)
		}
		return scenario.OK(resp)

	case scenario.KindEquipItem:
		item, err := act.Require("item")
		if err != nil {
			return scenario.FailErr(err)
		}
		slot := act.String("slot")
		if slot == "" {
			slot = "mainhand"
		}
		resp, err := backend.EquipItem(ctx, player, slot, item)
		if err != nil {
			return backendFail("equip_item", err)
		}
		return scenario.OK(resp)

	case scenario.KindGetInventory:
		stacks, err := backend.Inventory(ctx, player)
		if err != nil {
			return backendFail("get_inventory", err)
		}
		return storeOr(act, stacks, scenario.OK(renderValue(stacks)))

	case scenario.KindGetEquipment:
		equipment, err := backend.Equipment(ctx, player)
		if err != nil {
			return backendFail("get_equipment", err)
		}
		return storeOr(act, equipment, scenario.OK(renderValue(equipment)))

	default:
		return unsupported(act.Kind)
	}
}
