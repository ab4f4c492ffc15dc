package sdlhost

import (
	"fmt"

	"github.com/tuboc/chip8vm/emulator"
	"github.com/veandco/go-sdl2/sdl"
)

func (h *Host) drawDebugInfo(vm *emulator.Interpreter) {
	top := int(h.emulatorH())
	w := int(h.windowW())

	_ = h.renderer.SetDrawColor(32, 32, 32, 255)
	_ = h.renderer.FillRect(&sdl.Rect{X: 0, Y: int32(top), W: int32(w), H: InformationH})

	// draw opcodes history
	for i, line := range vm.History() {
		h.drawText(line, 0, top+i*FontSize)
	}

	state := vm.DumpState()

	// draw v registers
	offsetX := w/2 + 48
	for i, v := range state.V {
		h.drawText(fmt.Sprintf("V%X = %02X", i, v), offsetX, top+i*FontSize)
	}

	// draw other registers
	offsetX = w - FontSize*9
	h.drawText(fmt.Sprintf("DT = %02X", state.DT), offsetX, top+FontSize*0)
	h.drawText(fmt.Sprintf("ST = %02X", state.ST), offsetX, top+FontSize*1)
	h.drawText(fmt.Sprintf("SP = %02X", len(state.Stack)), offsetX, top+FontSize*2)
	h.drawText(fmt.Sprintf(" I = %04X", state.I), offsetX, top+FontSize*3)

	// draw key inputs
	keys := keyBits(h.pad.Keys())
	h.drawText(fmt.Sprintf("KEYS %d%d%d%d", keys[0x01], keys[0x02], keys[0x03], keys[0x0c]), offsetX, top+FontSize*5)
	h.drawText(fmt.Sprintf("     %d%d%d%d", keys[0x04], keys[0x05], keys[0x06], keys[0x0d]), offsetX, top+FontSize*6)
	h.drawText(fmt.Sprintf("     %d%d%d%d", keys[0x07], keys[0x08], keys[0x09], keys[0x0e]), offsetX, top+FontSize*7)
	h.drawText(fmt.Sprintf("     %d%d%d%d", keys[0x0a], keys[0x00], keys[0x0b], keys[0x0f]), offsetX, top+FontSize*8)

	switch {
	case state.Status == emulator.WaitingForKey:
		h.drawText(fmt.Sprintf("KEY->V%X", state.WaitReg), offsetX, top+FontSize*10)
	case h.stepMode:
		h.drawText("STEP", offsetX, top+FontSize*10)
	}
}

func keyBits(keys [emulator.KeyCount]bool) [emulator.KeyCount]int {
	var bits [emulator.KeyCount]int
	for i, k := range keys {
		if k {
			bits[i] = 1
		}
	}
	return bits
}

// drawText copies glyphs from the font sheet, a 32 column grid of
// FontSize squares starting at ' '.
func (h *Host) drawText(s string, x, y int) {
	for i, v := range []byte(s) {
		v -= byte(' ')
		fx := FontSize * (int32(v) % FontPerW)
		fy := FontSize * (int32(v) / FontPerW)
		_ = h.renderer.Copy(h.font,
			&sdl.Rect{X: fx, Y: fy, W: FontSize, H: FontSize},
			&sdl.Rect{X: int32(x + i*FontSize), Y: int32(y), W: FontSize, H: FontSize})
	}
}
