package quiz

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog indexes diagnostics by slug.
type Catalog struct {
	bySlug map[string]Diagnostic
}

// NewCatalog validates and indexes diagnostics. A later entry replaces an
// earlier one with the same slug.
func NewCatalog(diags ...Diagnostic) (*Catalog, error) {
	c := &Catalog{bySlug: make(map[string]Diagnostic, len(diags))}
	for _, d := range diags {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		c.bySlug[d.Slug] = d
	}
	return c, nil
}

// DefaultCatalog holds the built-in transport and KOP diagnostics.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Transport(), KOP())
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// Lookup returns the diagnostic with slug.
func (c *Catalog) Lookup(slug string) (Diagnostic, bool) {
	d, ok := c.bySlug[slug]
	return d, ok
}

// List returns all diagnostics ordered by slug.
func (c *Catalog) List() []Diagnostic {
	out := make([]Diagnostic, 0, len(c.bySlug))
	for _, d := range c.bySlug {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

type catalogFile struct {
	Diagnostics []Diagnostic `yaml:"diagnostics"`
}

// LoadFile reads diagnostics from a YAML file and merges them over base.
func LoadFile(path string, base *Catalog) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if len(file.Diagnostics) == 0 {
		return nil, fmt.Errorf("catalog %s defines no diagnostics", path)
	}

	var diags []Diagnostic
	if base != nil {
		diags = base.List()
	}
	for _, d := range file.Diagnostics {
		if d.Reveal == "" {
			d.Reveal = RevealOnRequest
		}
		diags = append(diags, d)
	}

	return NewCatalog(diags...)
}

// Transport is the staff-transport provider diagnostic.
func Transport() Diagnostic {
	return Diagnostic{
		Slug:         "transporte",
		ServiceLabel: "Diagnóstico de Transporte de Personal",
		Reveal:       RevealOnRequest,
		Theme: Theme{
			Title:    "¿Qué tan bueno es tu proveedor de transporte?",
			Subtitle: "¡Encuentra las debilidades y fortalezas de tu servicio de transporte con este sencillo test!",
			Accent:   "emerald",
		},
		Questions: []Question{
			{ID: 1, Text: "¿Recibes reportes de puntualidad por ruta y unidad con indicadores claros?"},
			{ID: 2, Text: "¿Tu proveedor garantiza al menos un 95% de cumplimiento en horarios?"},
			{ID: 3, Text: "¿Tus empleados viajan en unidades recientes, con clima y mantenimiento preventivo al día?"},
			{ID: 4, Text: "¿Los choferes cuentan con capacitación en manejo defensivo y protocolos de seguridad?"},
			{ID: 5, Text: "¿Las unidades ofrecen comodidad suficiente para llegadas con buen ánimo y energía?"},
			{ID: 6, Text: "¿El proveedor entiende que el transporte influye en la rotación y el compromiso del personal?"},
			{ID: 7, Text: "Si falla una unidad, ¿recibes reposición inmediata?"},
			{ID: 8, Text: "¿Existen protocolos probados para incidentes en ruta o bloqueos?"},
			{ID: 9, Text: "¿Puedes contactar a más de una persona responsable en caso de incidencia?"},
			{ID: 10, Text: "¿Hay tres niveles de escalación (operador, coordinador, dirección) para resolver rápido?"},
			{ID: 11, Text: "¿Cuentas con acceso a monitoreo en tiempo real de tus unidades?"},
			{ID: 12, Text: "¿Puedes saber quién subió y quién no al inicio del turno?"},
		},
		Buckets: Buckets{
			Low: Bucket{
				Badge:      "Muy pobre",
				Tone:       "text-red-700",
				Background: "bg-red-50",
				Heading:    "❌ Necesitas revisar tu servicio de transporte.",
				Detail: "Definitivamente hay incumplimientos recurrentes en puntualidad por ruta/unidad, cobertura de turnos, protocolos de contingencia y control operativo. " +
					"Persistir con este nivel de servicio impacta el estado de ánimo desde el abordaje, reduce el desempeño en turno, eleva costos (horas extra, reprocesos) " +
					"y expone a la empresa a riesgos de seguridad y reputacionales. Se requiere un plan inmediato de estabilización con responsables, métricas y fechas de cierre.",
			},
			Medium: Bucket{
				Badge:      "Regular",
				Tone:       "text-amber-700",
				Background: "bg-amber-50",
				Heading:    "⚠️ Hay cosas que mejorar.",
				Detail: "Hay evidentes brechas en confiabilidad operativa y control del servicio: puntualidad por ruta/unidad variable, cobertura incompleta y protocolos " +
					"de contingencia poco robustos. Mantener estas brechas incrementa tardanzas y ausentismo, afecta el estado de ánimo desde el abordaje, reduce desempeño y eleva costos. " +
					"Corregir de inmediato estabiliza el servicio y mejora la experiencia laboral desde el primer contacto del día.",
			},
			High: Bucket{
				Badge:      "Sólido",
				Tone:       "text-emerald-700",
				Background: "bg-emerald-50",
				Heading:    "🚍 Tienes un transporte de personal sólido.",
				Detail: "¡Felicidades! Tienes un nivel alto de cumplimiento en puntualidad por ruta, cobertura de turnos, protocolos de contingencia, " +
					"mantenimiento y seguridad de unidades, además de esquemas claros de escalación y atención ejecutiva. La operación cuenta con trazabilidad y reportes " +
					"suficientes para asegurar continuidad y mejora continua.",
			},
		},
	}
}

// KOP is the quality-support provider diagnostic.
func KOP() Diagnostic {
	return Diagnostic{
		Slug:         "kop",
		ServiceLabel: "Diagnóstico KOP de Soporte de Calidad",
		Reveal:       RevealOnComplete,
		Theme: Theme{
			Title:    "¿Qué tan confiable es tu soporte de calidad?",
			Subtitle: "Evalúa en minutos la contención, inspección y respuesta de tu proveedor de soporte de calidad.",
			Accent:   "sky",
		},
		Questions: []Question{
			{ID: 1, Text: "¿Tu proveedor inicia la contención de material sospechoso el mismo turno en que se reporta?"},
			{ID: 2, Text: "¿Recibes reportes diarios de inspección con piezas revisadas, rechazadas y retrabajadas?"},
			{ID: 3, Text: "¿Los inspectores están certificados en las instrucciones de trabajo de tu cliente final?"},
			{ID: 4, Text: "¿Existe una línea de atención disponible en todos los turnos de producción?"},
			{ID: 5, Text: "¿Los hallazgos se documentan con evidencia fotográfica y trazabilidad por lote?"},
			{ID: 6, Text: "¿El proveedor propone acciones correctivas y no solo selecciona material?"},
			{ID: 7, Text: "¿Cuentas con indicadores de PPM y tendencia por número de parte?"},
			{ID: 8, Text: "¿Se respeta el tiempo de respuesta acordado para actividades en sitio del cliente?"},
			{ID: 9, Text: "¿El personal de soporte conoce los requisitos de tu sistema de calidad (IATF, ISO 9001)?"},
			{ID: 10, Text: "¿Hay un responsable de cuenta que da seguimiento hasta el cierre de cada caso?"},
			{ID: 11, Text: "¿La facturación coincide con las horas y piezas reportadas sin aclaraciones recurrentes?"},
			{ID: 12, Text: "¿Tu cliente final ha dejado de reportar incidencias por escapes de calidad?"},
		},
		Buckets: Buckets{
			Low: Bucket{
				Badge:      "Muy pobre",
				Tone:       "text-red-700",
				Background: "bg-red-50",
				Heading:    "❌ Necesitas estabilizar tu soporte de calidad.",
				Detail: "La contención llega tarde, los reportes no dan trazabilidad y las incidencias se repiten con tu cliente final. " +
					"Cada escape de calidad genera cargos, reprocesos y desgaste comercial. Se requiere un plan inmediato de estabilización con responsables, indicadores y fechas de cierre.",
			},
			Medium: Bucket{
				Badge:      "Regular",
				Tone:       "text-amber-700",
				Background: "bg-amber-50",
				Heading:    "⚠️ Hay cosas que mejorar.",
				Detail: "El servicio cubre lo básico pero con brechas en tiempos de respuesta, evidencia y seguimiento de acciones correctivas. " +
					"Mantener estas brechas eleva el riesgo de reclamaciones y costos ocultos. Cerrarlas ahora fortalece la relación con tu cliente final.",
			},
			High: Bucket{
				Badge:      "Sólido",
				Tone:       "text-emerald-700",
				Background: "bg-emerald-50",
				Heading:    "✅ Tienes un soporte de calidad sólido.",
				Detail: "¡Felicidades! Tu proveedor contiene a tiempo, documenta con trazabilidad y da seguimiento hasta el cierre. " +
					"La operación cuenta con indicadores suficientes para sostener la mejora continua.",
			},
		},
	}
}
