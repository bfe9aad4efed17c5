package main

import (
	"fmt"
	"image/color"
	"log"

	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/milk9111/footing/common"
	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ground"
	"github.com/milk9111/footing/prefabs"
)

// TuningUI is the F1 panel: live character tuning with policy selection,
// stepper rows for the numeric values, sensor toggle cycling, and a button
// that copies the current tuning to the clipboard as prefab yaml.
type TuningUI struct {
	ui      *ebitenui.UI
	readout *widget.Text

	game        *Game
	clipboardOK bool
}

func NewTuningUI(g *Game) *TuningUI {
	t := &TuningUI{game: g}

	if err := clipboard.Init(); err != nil {
		log.Printf("tuning: clipboard unavailable: %v", err)
	} else {
		t.clipboardOK = true
	}

	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	activeImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x22, G: 0x55, B: 0x22, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 16, Bottom: 16, Left: 20, Right: 20}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/4, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)

	title := widget.NewText(
		widget.TextOpts.Text("Tuning (F1)", &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)
	panel.AddChild(title)

	t.readout = widget.NewText(
		widget.TextOpts.Text("", &face, white),
	)
	panel.AddChild(t.readout)

	// One toggle button per policy; the radio group keeps them exclusive.
	policies := []ground.FallThroughPolicy{
		ground.JumpThroughOnly,
		ground.WithoutHelper,
		ground.SingleFall,
		ground.KeepFalling,
	}
	var policyButtons []*widget.Button
	for _, p := range policies {
		policy := p
		btn := widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnImg, Pressed: activeImg}),
			widget.ButtonOpts.Text(policy.String(), &face, btnTextColor),
			widget.ButtonOpts.ToggleMode(),
			widget.ButtonOpts.ClickedHandler(func(_ *widget.ButtonClickedEventArgs) {
				t.withMotion(func(m *component.CharacterMotion) {
					m.Policy = policy
				})
			}),
		)
		policyButtons = append(policyButtons, btn)
		panel.AddChild(btn)
	}
	elements := make([]widget.RadioGroupElement, 0, len(policyButtons))
	for _, b := range policyButtons {
		elements = append(elements, b)
	}
	group := widget.NewRadioGroup(widget.RadioGroupOpts.Elements(elements...))
	if m, ok := t.motion(); ok {
		if idx := int(m.Policy); idx >= 0 && idx < len(policyButtons) {
			group.SetActive(policyButtons[idx])
		}
	}

	panel.AddChild(t.stepperRow(&face, btnImg, btnTextColor, "Speed", 20, func(m *component.CharacterMotion, delta float64) {
		m.Speed = common.Clamp(m.Speed+delta, 0, 600)
	}))
	panel.AddChild(t.stepperRow(&face, btnImg, btnTextColor, "Float height", 2, func(m *component.CharacterMotion, delta float64) {
		m.FloatHeight = common.Clamp(m.FloatHeight+delta, 4, 80)
	}))
	panel.AddChild(t.stepperRow(&face, btnImg, btnTextColor, "Min ghost prox", 2, func(m *component.CharacterMotion, delta float64) {
		m.MinGhostProximity = common.Clamp(m.MinGhostProximity+delta, 0, 60)
	}))
	panel.AddChild(t.stepperRow(&face, btnImg, btnTextColor, "Dash distance", 10, func(m *component.CharacterMotion, delta float64) {
		m.DashDistance = common.Clamp(m.DashDistance+delta, 0, 400)
	}))

	toggleBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnImg, Pressed: btnImg}),
		widget.ButtonOpts.Text("Cycle sensor toggle (Tab)", &face, btnTextColor),
		widget.ButtonOpts.ClickedHandler(func(_ *widget.ButtonClickedEventArgs) {
			t.game.cycleToggle()
		}),
	)
	panel.AddChild(toggleBtn)

	copyBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnImg, Pressed: btnImg}),
		widget.ButtonOpts.Text("Copy YAML", &face, btnTextColor),
		widget.ButtonOpts.ClickedHandler(func(_ *widget.ButtonClickedEventArgs) {
			t.copyYAML()
		}),
	)
	panel.AddChild(copyBtn)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	t.ui = &ebitenui.UI{Container: root}
	return t
}

// stepperRow builds "label  -  +" with the buttons applying ±step.
func (t *TuningUI) stepperRow(face *ebtext.Face, btnImg *imageui.NineSlice, textColor *widget.ButtonTextColor, label string, step float64, apply func(m *component.CharacterMotion, delta float64)) *widget.Container {
	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
		)),
	)
	row.AddChild(widget.NewText(
		widget.TextOpts.Text(label, face, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
	))
	row.AddChild(widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnImg, Pressed: btnImg}),
		widget.ButtonOpts.Text("-", face, textColor),
		widget.ButtonOpts.ClickedHandler(func(_ *widget.ButtonClickedEventArgs) {
			t.withMotion(func(m *component.CharacterMotion) { apply(m, -step) })
		}),
	))
	row.AddChild(widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnImg, Pressed: btnImg}),
		widget.ButtonOpts.Text("+", face, textColor),
		widget.ButtonOpts.ClickedHandler(func(_ *widget.ButtonClickedEventArgs) {
			t.withMotion(func(m *component.CharacterMotion) { apply(m, step) })
		}),
	))
	return row
}

// Update refreshes the readout and pumps the widget tree.
func (t *TuningUI) Update() {
	if m, ok := t.motion(); ok {
		toggle := ground.Enabled
		if sensor, ok := ecs.Get(t.game.world, t.game.player, component.GroundSensorComponent.Kind()); ok {
			toggle = sensor.Toggle
		}
		t.readout.Label = fmt.Sprintf(
			"policy %s\nspeed %.0f  float %.1f\nmin prox %.1f  dash %.0f\nsensor %s",
			m.Policy, m.Speed, m.FloatHeight, m.MinGhostProximity, m.DashDistance, toggle,
		)
	}
	t.ui.Update()
}

func (t *TuningUI) Draw(screen *ebiten.Image) {
	t.ui.Draw(screen)
}

// copyYAML snapshots the live tuning back into a CharacterSpec and writes it
// to the OS clipboard, so a good feel found by poking the steppers can be
// pasted straight into the prefab.
func (t *TuningUI) copyYAML() {
	if !t.clipboardOK {
		log.Printf("tuning: clipboard unavailable, not copying")
		return
	}
	m, ok := t.motion()
	if !ok {
		return
	}
	sensor, ok := ecs.Get(t.game.world, t.game.player, component.GroundSensorComponent.Kind())
	if !ok || sensor.Sensor == nil {
		return
	}
	body, _ := ecs.Get(t.game.world, t.game.player, component.PhysicsBodyComponent.Kind())
	name := "player"
	if n, ok := ecs.Get(t.game.world, t.game.player, component.NameComponent.Kind()); ok && n.Value != "" {
		name = n.Value
	}

	spec := prefabs.CharacterSpec{
		Name: name,
		Sensor: prefabs.SensorSpec{
			OriginX: sensor.Sensor.CastOrigin.X(),
			OriginY: sensor.Sensor.CastOrigin.Y(),
			Range:   sensor.Sensor.CastRange,
			Cutoff:  sensor.Sensor.IntersectionMatchPreventionCutoff,
		},
		Motion: prefabs.MotionSpec{
			Speed:             m.Speed,
			Acceleration:      m.Acceleration,
			AirAcceleration:   m.AirAcceleration,
			FloatHeight:       m.FloatHeight,
			CrouchFloatOffset: m.CrouchFloatOffset,
			CrouchSpeedFactor: m.CrouchSpeedFactor,
			SpringStrength:    m.SpringStrength,
			SpringDampening:   m.SpringDampening,
			JumpHeight:        m.JumpHeight,
			DashDistance:      m.DashDistance,
			DashSpeed:         m.DashSpeed,
			ActionsInAir:      m.ActionsInAir,
			MinGhostProximity: m.MinGhostProximity,
			Policy:            m.Policy.String(),
		},
	}
	if sensor.Sensor.Shape != nil {
		spec.Sensor.ShapeRadius = sensor.Sensor.Shape.Radius
	}
	if body != nil {
		spec.Body = prefabs.BodySpec{
			Width:    body.Width,
			Height:   body.Height,
			Radius:   body.Radius,
			Mass:     body.Mass,
			Friction: body.Friction,
		}
	}

	data, err := prefabs.MarshalSpec(spec)
	if err != nil {
		log.Printf("tuning: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	log.Printf("tuning: copied %s tuning to clipboard", name)
}

func (t *TuningUI) motion() (*component.CharacterMotion, bool) {
	return ecs.Get(t.game.world, t.game.player, component.CharacterMotionComponent.Kind())
}

func (t *TuningUI) withMotion(fn func(m *component.CharacterMotion)) {
	if m, ok := t.motion(); ok {
		fn(m)
	}
}
