package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"
)

const protocolVersion = 1

// Packet directions
const (
	ToServer = "client->server"
	ToClient = "server->client"
)

// packetDescriptor documents one wire packet for schema generation
type packetDescriptor struct {
	Type      string
	Direction string
	Encoding  string // "json" or "msgpack"
	Prototype interface{}
}

var packetDescriptors = []packetDescriptor{
	{MsgJoin, ToServer, "json", JoinMsg{}},
	{MsgCreate, ToServer, "json", CreateMsg{}},
	{MsgCharacter, ToServer, "json", CharacterMsg{}},
	{MsgMove, ToServer, "json", MoveMsg{}},
	{MsgCast, ToServer, "json", CastMsg{}},

	{MsgSnapshot, ToClient, "msgpack", WorldSnapshot{}},
	{MsgJoined, ToClient, "json", JoinedMsg{}},
	{MsgRooms, ToClient, "json", []RoomInfo{}},
	{MsgError, ToClient, "json", ErrorMsg{}},
	{MsgCharacterCreated, ToClient, "json", CharacterCreatedMsg{}},
	{MsgCharacterKilled, ToClient, "json", CharacterKilledMsg{}},
	{MsgCooldown, ToClient, "json", CooldownMsg{}},
	{MsgEffect, ToClient, "json", EffectMsg{}},
	{MsgAttach, ToClient, "json", AttachMsg{}},
	{MsgEntityFalling, ToClient, "json", EntityFallingMsg{}},
	{MsgMapSwitch, ToClient, "json", MapSwitchMsg{}},
	{MsgScores, ToClient, "json", ScoresMsg{}},
}

// buildPacketSchema reflects the payload schema of one packet
func buildPacketSchema(d packetDescriptor) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(d.Prototype)
	schema.Title = d.Type
	schema.Description = fmt.Sprintf("%s payload, %s encoded, protocol v%d", d.Direction, d.Encoding, protocolVersion)
	return schema
}

// writeSchemas writes one <type>.schema.json per packet into dir and
// returns the written file names in order
func writeSchemas(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create schema directory: %w", err)
	}
	names := make([]string, 0, len(packetDescriptors))
	for _, d := range packetDescriptors {
		data, err := json.MarshalIndent(buildPacketSchema(d), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal %s schema: %w", d.Type, err)
		}
		name := d.Type + ".schema.json"
		outPath := filepath.Join(dir, name)
		tmpPath := outPath + ".tmp"
		if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
			return nil, fmt.Errorf("write %s schema: %w", d.Type, err)
		}
		if err := os.Rename(tmpPath, outPath); err != nil {
			return nil, fmt.Errorf("replace %s schema: %w", d.Type, err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
